package worker

import (
	"context"
	"errors"
	"log/slog"
)

// Processor executes one unit of queued work. ProcessOne blocks until work
// is available or ctx ends and reports whether anything was processed.
//
// *engine.Executor is the Processor used throughout proctree.
type Processor interface {
	ProcessOne(ctx context.Context) (bool, error)
}

// Config tunes a Worker.
type Config struct {
	// Logger receives task errors. Defaults to slog.Default().
	Logger *slog.Logger

	// OnError, if set, is called for every failed task in addition to
	// logging. It must not block.
	OnError func(err error)
}

// Worker drives a Processor: it keeps pulling the next running task and
// executes it on the calling goroutine.
type Worker struct {
	proc   Processor
	logger *slog.Logger
	onErr  func(error)
}

// New creates a Worker with default config.
func New(proc Processor) *Worker {
	return NewWithConfig(proc, Config{})
}

// NewWithConfig creates a Worker with the given config.
func NewWithConfig(proc Processor, cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{proc: proc, logger: logger, onErr: cfg.OnError}
}

// ProcessOne executes a single task.
// Returns (processed, error):
//   - processed == false: ctx ended before a task became available
//   - processed == true: a task was executed; err reports how it ended.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	return w.proc.ProcessOne(ctx)
}

// Run processes tasks until ctx is cancelled. Task failures are logged and do
// not stop the loop. It returns nil on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	for {
		processed, err := w.proc.ProcessOne(ctx)
		if !processed {
			if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return nil
				}
				continue
			}
			return err
		}
		if err != nil {
			w.logger.WarnContext(ctx, "task_failed", slog.Any("error", err))
			if w.onErr != nil {
				w.onErr(err)
			}
		}
	}
}
