package physio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// CreateHypothesis inserts a new hypothesis version for the user.
// Version is strictly increasing: next = previous max + 1, starting at 1.
func (r *Repo) CreateHypothesis(ctx context.Context, userID uint64, report SubjectiveReport) (*Hypothesis, error) {
	var prev int
	err := r.db.WithContext(ctx).Model(&Hypothesis{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&prev).Error
	if err != nil {
		return nil, fmt.Errorf("createHypothesis: %w", err)
	}

	subj, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("createHypothesis: %w", err)
	}
	diffs, err := json.Marshal(SeedDifferentials(report))
	if err != nil {
		return nil, fmt.Errorf("createHypothesis: %w", err)
	}

	h := &Hypothesis{
		ID:            uuid.NewString(),
		UserID:        userID,
		Version:       prev + 1,
		Subjective:    datatypes.JSON(subj),
		Differentials: datatypes.JSON(diffs),
		Status:        "active",
	}
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, fmt.Errorf("createHypothesis: %w", err)
	}
	return h, nil
}

// GeneratePlan creates a templated plan linked to the hypothesis.
func (r *Repo) GeneratePlan(ctx context.Context, userID uint64, hypothesisID string) (*Plan, error) {
	base := GenerateFromHypothesis(hypothesisID)

	micro, err := json.Marshal(base.Microcycles)
	if err != nil {
		return nil, fmt.Errorf("generatePlan: %w", err)
	}

	var linked *string
	if hypothesisID != "" {
		linked = &hypothesisID
	}

	p := &Plan{
		ID:               uuid.NewString(),
		UserID:           userID,
		LinkedHypothesis: linked,
		Version:          base.Version,
		MesocycleWeeks:   base.MesocycleWeeks,
		Microcycles:      datatypes.JSON(micro),
		ProgressionLogic: base.ProgressionLogic,
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("generatePlan: %w", err)
	}
	return p, nil
}

// LogSession records one check-in against a plan. Pain and RPE are written in
// the {"overall": n} shape the summarizer coerces back out.
func (r *Repo) LogSession(ctx context.Context, userID uint64, planID string, pain, rpe *float64, notes string, completed []string) (*SessionLog, error) {
	entry := &SessionLog{
		ID:          uuid.NewString(),
		UserID:      userID,
		PlanID:      planID,
		PerformedAt: time.Now(),
	}
	if pain != nil {
		b, err := json.Marshal(map[string]float64{"overall": *pain})
		if err != nil {
			return nil, fmt.Errorf("logSession: %w", err)
		}
		entry.Pain = datatypes.JSON(b)
	}
	if rpe != nil {
		b, err := json.Marshal(map[string]float64{"overall": *rpe})
		if err != nil {
			return nil, fmt.Errorf("logSession: %w", err)
		}
		entry.RPE = datatypes.JSON(b)
	}
	if notes != "" {
		entry.Notes = &notes
	}
	if len(completed) > 0 {
		b, err := json.Marshal(completed)
		if err != nil {
			return nil, fmt.Errorf("logSession: %w", err)
		}
		entry.CompletedExercises = datatypes.JSON(b)
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("logSession: %w", err)
	}
	return entry, nil
}

// latestHypothesis returns nil, nil when the user has none yet.
func (r *Repo) latestHypothesis(ctx context.Context, userID uint64) (*Hypothesis, error) {
	var h Hypothesis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

// latestPlan prefers the newest plan linked to the given hypothesis; with an
// empty id it returns the user's newest plan of any lineage.
func (r *Repo) latestPlan(ctx context.Context, userID uint64, linkedHypothesisID string) (*Plan, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC")
	if linkedHypothesisID != "" {
		q = q.Where("linked_hypothesis = ?", linkedHypothesisID)
	}

	var p Plan
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// recentLogs returns the newest logs first.
func (r *Repo) recentLogs(ctx context.Context, userID uint64, planID string, limit int) ([]SessionLog, error) {
	if limit <= 0 {
		limit = 3
	}
	var rows []SessionLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND plan_id = ?", userID, planID).
		Order("performed_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadTurnContext gathers the bounded summaries one turn runs against.
func (r *Repo) LoadTurnContext(ctx context.Context, userID uint64, logLimit int) (TurnContext, error) {
	var tc TurnContext

	h, err := r.latestHypothesis(ctx, userID)
	if err != nil {
		return tc, fmt.Errorf("loadTurnContext: %w", err)
	}
	tc.Hypothesis = summarizeHypothesis(h)

	linked := ""
	if tc.Hypothesis != nil {
		linked = tc.Hypothesis.ID
	}
	p, err := r.latestPlan(ctx, userID, linked)
	if err != nil {
		return tc, fmt.Errorf("loadTurnContext: %w", err)
	}
	tc.Plan = summarizePlan(p)

	if tc.Plan != nil {
		rows, err := r.recentLogs(ctx, userID, tc.Plan.ID, logLimit)
		if err != nil {
			return tc, fmt.Errorf("loadTurnContext: %w", err)
		}
		tc.Logs = bundleLogs(rows)
	}
	return tc, nil
}

// Listing for the CRUD endpoints, newest first.

func (r *Repo) ListHypotheses(ctx context.Context, userID uint64, limit int) ([]Hypothesis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []Hypothesis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repo) ListPlans(ctx context.Context, userID uint64, limit int) ([]Plan, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []Plan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repo) ListSessionLogs(ctx context.Context, userID uint64, limit int) ([]SessionLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []SessionLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("performed_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Job CRUD

func (r *Repo) CreateJob(ctx context.Context, job *OrchestrateJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetJobByID(ctx context.Context, id string) (*OrchestrateJob, error) {
	var j OrchestrateJob
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) UpdateJobStatusRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&OrchestrateJob{}).
		Where("id = ? AND status = ?", id, JobQueued).
		Update("status", JobRunning).Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, id string, resultJSON string) error {
	return r.db.WithContext(ctx).Model(&OrchestrateJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      JobSucceeded,
			"result_json": resultJSON,
			"error":       nil,
		}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&OrchestrateJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      JobFailed,
			"error":       errMsg,
			"result_json": nil,
		}).Error
}

func (r *Repo) GetJobByUserAndIdempotencyKey(ctx context.Context, userID uint64, key string) (*OrchestrateJob, error) {
	var job OrchestrateJob
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJobOrGetExisting tries to create a job, but if (user_id, idempotency_key)
// already exists, it returns the existing job instead.
func (r *Repo) CreateJobOrGetExisting(ctx context.Context, job *OrchestrateJob) (*OrchestrateJob, bool, error) {
	if job.IdempotencyKey == nil || *job.IdempotencyKey == "" {
		job.IdempotencyKey = nil
		if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
			return nil, false, err
		}
		return job, true, nil
	}

	err := r.db.WithContext(ctx).Create(job).Error
	if err == nil {
		return job, true, nil
	}

	existing, getErr := r.GetJobByUserAndIdempotencyKey(ctx, job.UserID, *job.IdempotencyKey)
	if getErr == nil {
		return existing, false, nil
	}
	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return nil, false, getErr
}
