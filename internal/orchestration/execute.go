package orchestration

import (
	"context"
	"fmt"

	"github.com/mango278/physiome/internal/physio"
)

// Result is the outcome of one orchestrated turn. Changes is nil unless a
// mutation occurred, in which case it names the created entities.
type Result struct {
	Reply   string         `json:"reply"`
	Intent  Intent         `json:"intent"`
	Changes map[string]any `json:"changes"`
}

const fallbackReply = "Got it. If you’d like me to log a session, say something like " +
	"“I completed today’s session at RPE 6, pain 2/10.” " +
	"If symptoms changed, tell me what’s new and I can update your hypothesis."

type Executor struct {
	repo *physio.Repo
}

func NewExecutor(repo *physio.Repo) *Executor {
	return &Executor{repo: repo}
}

// Execute performs exactly one datastore operation (or none) for the intent.
// The red-flag gate runs upstream; a red_flag intent reaching here is treated
// as an informational no-op.
func (e *Executor) Execute(ctx context.Context, userID uint64, input string, intent Intent, tc physio.TurnContext) (Result, error) {
	switch intent {
	case IntentLogSession:
		return e.logSession(ctx, userID, input, tc)
	case IntentReportSymptom:
		return e.reportSymptom(ctx, userID, input)
	case IntentRequestPlan:
		return e.requestPlan(ctx, userID, input, tc)
	case IntentRedFlag:
		return Result{Reply: SafetyReply, Intent: intent, Changes: nil}, nil
	default:
		return Result{Reply: fallbackReply, Intent: intent, Changes: nil}, nil
	}
}

func (e *Executor) logSession(ctx context.Context, userID uint64, input string, tc physio.TurnContext) (Result, error) {
	if tc.Plan == nil || tc.Plan.ID == "" {
		return Result{
			Reply:  "I don’t see an active plan. Tell me what hurts and I’ll create a hypothesis and plan.",
			Intent: IntentLogSession,
		}, nil
	}

	pain := ExtractPain(input)
	rpe := ExtractRPE(input)

	entry, err := e.repo.LogSession(ctx, userID, tc.Plan.ID, pain, rpe, input, nil)
	if err != nil {
		return Result{}, err
	}

	reply := "Logged your session"
	if pain != nil {
		reply += fmt.Sprintf(" (pain %g/10)", *pain)
	}
	if rpe != nil {
		reply += fmt.Sprintf(" (RPE %g/10)", *rpe)
	}
	reply += "."

	return Result{
		Reply:   reply,
		Intent:  IntentLogSession,
		Changes: map[string]any{"session_log": entry},
	}, nil
}

func (e *Executor) reportSymptom(ctx context.Context, userID uint64, input string) (Result, error) {
	hyp, err := e.repo.CreateHypothesis(ctx, userID, physio.SubjectiveReport{Narrative: input})
	if err != nil {
		return Result{}, err
	}
	plan, err := e.repo.GeneratePlan(ctx, userID, hyp.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Reply:   "I’ve updated your injury hypothesis and generated a new plan based on what you reported.",
		Intent:  IntentReportSymptom,
		Changes: map[string]any{"injury_hypothesis": hyp, "workout_plan": plan},
	}, nil
}

func (e *Executor) requestPlan(ctx context.Context, userID uint64, input string, tc physio.TurnContext) (Result, error) {
	hypID := ""
	if tc.Hypothesis != nil {
		hypID = tc.Hypothesis.ID
	}
	if hypID == "" {
		hyp, err := e.repo.CreateHypothesis(ctx, userID, physio.SubjectiveReport{Narrative: input})
		if err != nil {
			return Result{}, err
		}
		hypID = hyp.ID
	}
	plan, err := e.repo.GeneratePlan(ctx, userID, hypID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Reply:   "Here’s a plan based on your current hypothesis.",
		Intent:  IntentRequestPlan,
		Changes: map[string]any{"workout_plan": plan},
	}, nil
}
