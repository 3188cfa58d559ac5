package analysis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KaramelBytes/healthloom-cli/internal/logging"
	"github.com/google/uuid"
)

// Outcome is delivered for the newest run only.
type Outcome struct {
	RunID    string
	Snapshot Snapshot
	Results  []Result
	Elapsed  time.Duration
}

// Runner executes analyses off the caller's path with cancel-and-replace
// semantics: a new Trigger cancels the run in flight, and only the newest
// run's results are delivered. Partial results are never merged.
type Runner struct {
	parent   context.Context
	logger   *slog.Logger
	onResult func(Outcome)
	analyze  func(context.Context, Snapshot) ([]Result, error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	current string

	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

// NewRunner returns a runner whose runs are bound to ctx. onResult is called
// from the run's goroutine, one call at a time.
func NewRunner(ctx context.Context, logger *slog.Logger, onResult func(Outcome)) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		parent:   ctx,
		logger:   logging.Component(logger, "analysis_runner"),
		onResult: onResult,
		analyze: func(ctx context.Context, s Snapshot) ([]Result, error) {
			return AnalyzeContext(ctx, s.Records, s.Variables, s.Cutoff, s.Options)
		},
	}
}

// Trigger supersedes any in-flight run with a new one over snap and returns its run ID.
func (r *Runner) Trigger(snap Snapshot) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(r.parent)

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	r.current = id
	r.wg.Add(1)
	r.mu.Unlock()

	r.logger.Debug("analysis triggered",
		slog.String("run_id", id),
		slog.Int("records", len(snap.Records)),
		slog.Int("variables", len(snap.Variables)),
		slog.String("cutoff", snap.Cutoff.Format(DateLayout)),
	)
	go r.run(ctx, cancel, id, snap)
	return id
}

// run releases its context on return; a later Trigger or Close cancelling it again is a no-op.
func (r *Runner) run(ctx context.Context, cancel context.CancelFunc, id string, snap Snapshot) {
	defer r.wg.Done()
	defer cancel()
	start := time.Now()
	results, err := r.analyze(ctx, snap)
	if err != nil {
		r.logger.Debug("analysis cancelled", slog.String("run_id", id), slog.String("error", err.Error()))
		return
	}

	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()
	if !r.isCurrent(id) {
		r.logger.Debug("analysis superseded", slog.String("run_id", id))
		return
	}
	elapsed := time.Since(start)
	r.logger.Debug("analysis finished",
		slog.String("run_id", id),
		slog.Int("significant", len(results)),
		slog.Duration("elapsed", elapsed),
	)
	if r.onResult != nil {
		r.onResult(Outcome{RunID: id, Snapshot: snap, Results: results, Elapsed: elapsed})
	}
}

func (r *Runner) isCurrent(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current == id
}

// Wait blocks until every started run has returned.
func (r *Runner) Wait() { r.wg.Wait() }

// Close cancels the run in flight and waits for all runs to return.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.current = ""
	r.mu.Unlock()
	r.wg.Wait()
}
