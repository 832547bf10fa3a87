package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task represents one post-commit side effect to attempt.
type Task struct {
	ID   string
	Kind string
	Run  func(context.Context) error
}

// Result captures the outcome of a single task.
type Result struct {
	ID       string
	Kind     string
	Err      error
	Duration time.Duration
}

// Failed reports whether the task ended in error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// RunnerConfig tunes batch execution.
type RunnerConfig struct {
	Concurrency int
	Logger      *zap.Logger
}

// Runner executes a batch of tasks with bounded concurrency and collects
// per-task results. Unlike a background queue it runs to completion: callers
// need the aggregated outcome, not fire-and-forget dispatch.
type Runner struct {
	concurrency int
	logger      *zap.Logger
}

// NewRunner builds a Runner with sane defaults.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Runner{concurrency: cfg.Concurrency, logger: cfg.Logger}
}

// Run executes every task and returns one result per task, in input order.
// Individual failures never abort the batch; a cancelled context fails the
// remaining tasks with the context error.
func (r *Runner) Run(ctx context.Context, batch []Task) []Result {
	results := make([]Result, len(batch))
	if len(batch) == 0 {
		return results
	}

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, task := range batch {
		wg.Add(1)
		go func(idx int, t Task) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = Result{ID: t.ID, Kind: t.Kind, Err: ctx.Err()}
				return
			}

			// The select picks at random when both channels are ready, so the
			// context must be re-checked before the task runs.
			if err := ctx.Err(); err != nil {
				results[idx] = Result{ID: t.ID, Kind: t.Kind, Err: err}
				return
			}

			start := time.Now()
			err := t.Run(ctx)
			results[idx] = Result{ID: t.ID, Kind: t.Kind, Err: err, Duration: time.Since(start)}
			if err != nil {
				r.logger.Sugar().Warnw("post-commit task failed", "task_id", t.ID, "kind", t.Kind, "error", err)
			}
		}(i, task)
	}

	wg.Wait()
	return results
}
