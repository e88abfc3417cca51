package orchestration

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/mango278/physiome/internal/physio"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&physio.Hypothesis{}, &physio.Plan{}, &physio.SessionLog{}, &physio.OrchestrateJob{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestPipeline_LogSessionTurn(t *testing.T) {
	db := openTestDB(t)
	repo := physio.NewRepo(db)
	pipeline := NewPipeline(repo, 3)
	ctx := context.Background()

	// user already has a hypothesis and a plan
	h, err := repo.CreateHypothesis(ctx, 1, physio.SubjectiveReport{Narrative: "overhead press pain"})
	if err != nil {
		t.Fatalf("seed hypothesis: %v", err)
	}
	if _, err := repo.GeneratePlan(ctx, 1, h.ID); err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	res, err := pipeline.Run(ctx, 1, "I completed today's session at RPE 6, pain 2/10")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Intent != IntentLogSession {
		t.Fatalf("expected log_session, got %s", res.Intent)
	}
	if !strings.Contains(res.Reply, "pain 2/10") || !strings.Contains(res.Reply, "RPE 6/10") {
		t.Fatalf("reply should name both values: %q", res.Reply)
	}
	if res.Changes == nil || res.Changes["session_log"] == nil {
		t.Fatalf("changes should carry the new session log")
	}

	var rows []physio.SessionLog
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("query logs: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 persisted log, got %d", len(rows))
	}
	if p := physio.CoerceOverall(rows[0].Pain); p == nil || *p != 2 {
		t.Fatalf("persisted pain wrong: %v", p)
	}
	if r := physio.CoerceOverall(rows[0].RPE); r == nil || *r != 6 {
		t.Fatalf("persisted rpe wrong: %v", r)
	}
}

func TestPipeline_LogSessionWithoutPlan(t *testing.T) {
	repo := physio.NewRepo(openTestDB(t))
	pipeline := NewPipeline(repo, 3)

	res, err := pipeline.Run(context.Background(), 1, "I completed today's session")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Intent != IntentLogSession {
		t.Fatalf("expected log_session, got %s", res.Intent)
	}
	if res.Changes != nil {
		t.Fatalf("no plan means no mutation")
	}
	if !strings.Contains(res.Reply, "don’t see an active plan") {
		t.Fatalf("reply should ask for symptoms first: %q", res.Reply)
	}
}

func TestPipeline_ReportSymptomTurn(t *testing.T) {
	db := openTestDB(t)
	repo := physio.NewRepo(db)
	pipeline := NewPipeline(repo, 3)
	ctx := context.Background()

	res, err := pipeline.Run(ctx, 1, "my shoulder started hurting after overhead press")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Intent != IntentReportSymptom {
		t.Fatalf("expected report_symptom, got %s", res.Intent)
	}
	if res.Changes == nil || res.Changes["injury_hypothesis"] == nil || res.Changes["workout_plan"] == nil {
		t.Fatalf("changes should carry both created entities: %+v", res.Changes)
	}

	var hyp physio.Hypothesis
	if err := db.First(&hyp).Error; err != nil {
		t.Fatalf("query hypothesis: %v", err)
	}
	var diffs []physio.Differential
	if err := json.Unmarshal(hyp.Differentials, &diffs); err != nil {
		t.Fatalf("unmarshal differentials: %v", err)
	}
	if len(diffs) != 2 || diffs[0].Code != "SIS_subacromial" || diffs[1].Code != "RC_strain" {
		t.Fatalf("unexpected differentials: %+v", diffs)
	}
	var sum float64
	for _, d := range diffs {
		sum += d.Confidence
	}
	if math.Abs(sum-1.0) > 0.01 {
		t.Fatalf("differentials should sum to 1.0, got %v", sum)
	}

	var plan physio.Plan
	if err := db.First(&plan).Error; err != nil {
		t.Fatalf("query plan: %v", err)
	}
	if plan.MesocycleWeeks != 6 {
		t.Fatalf("expected 6-week mesocycle, got %d", plan.MesocycleWeeks)
	}
	if plan.LinkedHypothesis == nil || *plan.LinkedHypothesis != hyp.ID {
		t.Fatalf("plan should link to the new hypothesis")
	}
}

func TestPipeline_RedFlagShortCircuits(t *testing.T) {
	db := openTestDB(t)
	repo := physio.NewRepo(db)
	pipeline := NewPipeline(repo, 3)

	res, err := pipeline.Run(context.Background(), 1, "numbness down my arm")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Intent != IntentRedFlag {
		t.Fatalf("expected red_flag, got %s", res.Intent)
	}
	if res.Reply != SafetyReply {
		t.Fatalf("expected the fixed safety message, got %q", res.Reply)
	}
	if res.Changes != nil {
		t.Fatalf("a gated turn must not mutate anything")
	}

	var hypCount, planCount, logCount int64
	db.Model(&physio.Hypothesis{}).Count(&hypCount)
	db.Model(&physio.Plan{}).Count(&planCount)
	db.Model(&physio.SessionLog{}).Count(&logCount)
	if hypCount+planCount+logCount != 0 {
		t.Fatalf("gate must run before the executor: %d/%d/%d rows", hypCount, planCount, logCount)
	}
}

func TestPipeline_SeverePainInLogsGates(t *testing.T) {
	db := openTestDB(t)
	repo := physio.NewRepo(db)
	pipeline := NewPipeline(repo, 3)
	ctx := context.Background()

	h, _ := repo.CreateHypothesis(ctx, 1, physio.SubjectiveReport{Narrative: "overhead press pain"})
	p, _ := repo.GeneratePlan(ctx, 1, h.ID)
	eight := 8.0
	if _, err := repo.LogSession(ctx, 1, p.ID, &eight, nil, "rough day", nil); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	res, err := pipeline.Run(ctx, 1, "feeling ok, adjust my plan please")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Intent != IntentRedFlag || res.Reply != SafetyReply {
		t.Fatalf("severe logged pain must gate the turn: %+v", res)
	}
}

func TestPipeline_RequestPlanCreatesHypothesisWhenMissing(t *testing.T) {
	db := openTestDB(t)
	repo := physio.NewRepo(db)
	pipeline := NewPipeline(repo, 3)

	res, err := pipeline.Run(context.Background(), 1, "please generate a workout plan")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Intent != IntentRequestPlan {
		t.Fatalf("expected request_plan, got %s", res.Intent)
	}
	if res.Changes == nil || res.Changes["workout_plan"] == nil {
		t.Fatalf("changes should carry the plan")
	}

	var hypCount int64
	db.Model(&physio.Hypothesis{}).Count(&hypCount)
	if hypCount != 1 {
		t.Fatalf("a hypothesis should be created first, got %d", hypCount)
	}
}

func TestPipeline_FallbackReply(t *testing.T) {
	repo := physio.NewRepo(openTestDB(t))
	pipeline := NewPipeline(repo, 3)

	res, err := pipeline.Run(context.Background(), 1, "morning")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Intent != IntentNone || res.Changes != nil {
		t.Fatalf("unmatched input should be a no-op: %+v", res)
	}
	if !strings.Contains(res.Reply, "log a session") {
		t.Fatalf("fallback reply should describe example phrasings: %q", res.Reply)
	}
}
