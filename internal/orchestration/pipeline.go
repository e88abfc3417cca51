package orchestration

import (
	"context"

	"github.com/mango278/physiome/internal/physio"
)

// Pipeline runs one full turn: gate → summarize → classify → execute.
// Both the sync endpoint and the queue worker go through it.
type Pipeline struct {
	repo     *physio.Repo
	executor *Executor
	logLimit int
}

func NewPipeline(repo *physio.Repo, logLimit int) *Pipeline {
	if logLimit <= 0 {
		logLimit = 3
	}
	return &Pipeline{
		repo:     repo,
		executor: NewExecutor(repo),
		logLimit: logLimit,
	}
}

// Run executes one turn to completion. A gated turn returns the fixed safety
// reply without classifying, executing, or touching the datastore.
func (p *Pipeline) Run(ctx context.Context, userID uint64, input string) (Result, error) {
	tc, err := p.repo.LoadTurnContext(ctx, userID, p.logLimit)
	if err != nil {
		return Result{}, err
	}

	if ShouldGate(input, tc.Logs.Logs) {
		return Result{Reply: SafetyReply, Intent: IntentRedFlag}, nil
	}

	intent := Classify(input, tc)
	return p.executor.Execute(ctx, userID, input, intent, tc)
}
