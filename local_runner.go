package proctree

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/petrijr/proctree/internal/coordinator"
	"github.com/petrijr/proctree/internal/editor"
	"github.com/petrijr/proctree/internal/engine"
	"github.com/petrijr/proctree/pkg/worker"
)

// LocalRunner bundles an in-memory Executor, a Coordinator, an Editor and a
// Worker to provide a simple "local runner" for development and debugging.
//
// Typical usage:
//
//	runner := proctree.NewLocalRunner()
//	_ = runner.StartWorkers(ctx, 1)
//	defer runner.Stop()
//
//	group := proctree.NewGroup("project")
//	task := proctree.NewTask("build").Calculator(proctree.ClassSleep, "wait")
//	_ = task.AddTo(group)
//
//	outcome, err := runner.Submit(group.ChildByName("build"))
type LocalRunner struct {
	// Executor owns the running task and the queue.
	Executor *Executor

	// Coordinator maps run and stop requests onto Executor.
	Coordinator *Coordinator

	// Editor applies structural edits. It shares Executor's registry.
	Editor *Editor

	// Worker executes running tasks using Executor.
	Worker *worker.Worker

	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewLocalRunner constructs a LocalRunner with the built-in calculators and
// a default logger.
//
// This is intended for local development, tests, and simple single-process
// tools.
func NewLocalRunner() *LocalRunner {
	return NewLocalRunnerWithObserver(nil, nil)
}

// NewLocalRunnerWithObserver is like NewLocalRunner but reports execution
// and edit events to obs.
func NewLocalRunnerWithObserver(obs Observer, logger *slog.Logger) *LocalRunner {
	if logger == nil {
		logger = slog.Default()
	}
	reg := engine.NewDefaultRegistry()
	exec := engine.NewExecutor(engine.Config{Registry: reg, Observer: obs, Logger: logger})

	return &LocalRunner{
		Executor:    exec,
		Coordinator: coordinator.New(exec, logger),
		Editor:      editor.New(editor.Config{Factory: reg, Observer: obs, Logger: logger}),
		Worker:      worker.NewWithConfig(exec, worker.Config{Logger: logger}),
		logger:      logger,
	}
}

// StartWorkers starts 'concurrency' worker goroutines that execute running
// tasks until the context is cancelled via Stop. Only one task runs at a
// time, so additional workers only wait.
//
// If StartWorkers is called more than once without Stop, it returns an error.
func (r *LocalRunner) StartWorkers(ctx context.Context, concurrency int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("proctree: LocalRunner already started")
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	r.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer r.wg.Done()
			if err := r.Worker.Run(ctx); err != nil {
				r.logger.Error("local runner worker stopped", slog.Any("error", err))
			}
		}()
	}

	return nil
}

// Stop terminates the running task, cancels all worker goroutines started by
// StartWorkers and waits for them to exit. Queued tasks are returned to
// READY.
func (r *LocalRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	r.Executor.TerminateAll()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// Submit runs the highest parent task of node, or queues it behind the
// running task. Submitting the running task again requests its termination.
func (r *LocalRunner) Submit(node *Node) (Outcome, error) {
	return r.Coordinator.Run(node)
}
