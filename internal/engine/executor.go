package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/petrijr/proctree/internal/taskqueue"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

var (
	// ErrTerminated is returned by Execute when a run stopped at a safe point
	// because termination was requested or the worker context ended.
	ErrTerminated = errors.New("execution terminated")

	ErrNotQueued = errors.New("task not queued")
)

// Config describes how to construct an Executor.
type Config struct {
	Registry *Registry
	Observer api.Observer
	Logger   *slog.Logger
}

// Executor is the single execution resource of a process group. It runs at
// most one task at a time; further tasks wait in a FIFO queue. Execution
// itself happens on whichever goroutine calls ProcessOne (see pkg/worker).
type Executor struct {
	registry *Registry
	observer api.Observer
	logger   *slog.Logger

	mu        sync.Mutex
	queue     *taskqueue.Queue
	current   *tree.Node
	run       *runHandle
	dispatch  chan *tree.Node
	listeners map[int]func()
	nextID    int
}

type runHandle struct {
	ctx    context.Context
	cancel context.CancelFunc
}

var _ api.ExecutionService = (*Executor)(nil)

// NewExecutor creates an idle executor.
func NewExecutor(cfg Config) *Executor {
	reg := cfg.Registry
	if reg == nil {
		reg = NewDefaultRegistry()
	}
	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		registry:  reg,
		observer:  obs,
		logger:    logger,
		queue:     taskqueue.New(),
		dispatch:  make(chan *tree.Node, 1),
		listeners: make(map[int]func()),
	}
}

// Registry returns the class registry used to execute calculators.
func (e *Executor) Registry() *Registry { return e.registry }

// Run queues task and promotes it to running when nothing else runs. The
// task and all its descendants become QUEUED; the promoted task RUNNING.
func (e *Executor) Run(task *tree.Node) error {
	if task == nil {
		return api.Invalid("run", "", tree.ErrNilNode)
	}
	if !task.IsTask() {
		return api.Invalid("run", task.Name(), tree.ErrNotTask)
	}
	if task.IsPlaceholder() || task.HasPlaceholderDescendants() {
		return api.Invalid("run", task.Name(), api.ErrNotEligible)
	}

	e.mu.Lock()
	if task == e.current {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s is running", api.ErrAlreadyQueued, task.Name())
	}
	if err := e.queue.Enqueue(task); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", api.ErrAlreadyQueued, task.Name())
	}
	task.SetStateRecursively(tree.StateQueued)
	e.startNextLocked()
	listeners := e.listenersLocked()
	e.mu.Unlock()

	e.observer.OnTaskQueued(context.Background(), task)
	notify(listeners)
	return nil
}

// startNextLocked promotes the head of the queue when nothing runs.
func (e *Executor) startNextLocked() {
	if e.current != nil {
		return
	}
	next := e.queue.Pop()
	if next == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.current = next
	e.run = &runHandle{ctx: ctx, cancel: cancel}
	next.SetState(tree.StateRunning)

	// The channel holds at most the current task, so this never blocks.
	e.dispatch <- next
}

// RequestTermination asks the running task to stop at its next safe point.
func (e *Executor) RequestTermination(task *tree.Node) error {
	e.mu.Lock()
	if task == nil || task != e.current {
		e.mu.Unlock()
		return api.ErrNotRunning
	}
	switch task.State() {
	case tree.StateTerminationRequested:
		e.mu.Unlock()
		return api.ErrTerminationState
	case tree.StateRunning, tree.StateConnecting:
	default:
		e.mu.Unlock()
		return fmt.Errorf("%w: state %s", api.ErrNotRunning, task.State())
	}
	task.SetState(tree.StateTerminationRequested)
	e.run.cancel()
	listeners := e.listenersLocked()
	e.mu.Unlock()

	e.logger.Info("termination requested", slog.String("task", task.Name()))
	e.observer.OnTerminationRequested(context.Background(), task)
	notify(listeners)
	return nil
}

// CurrentRunning returns the running task or nil.
func (e *Executor) CurrentRunning() *tree.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// IsQueued reports whether task waits in the queue.
func (e *Executor) IsQueued(task *tree.Node) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Contains(task)
}

// Queue returns the waiting tasks in execution order.
func (e *Executor) Queue() []*tree.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Snapshot()
}

// OnQueueChanged registers fn for queue and running-task changes.
func (e *Executor) OnQueueChanged(fn func()) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// RemoveFromQueue takes a waiting task out of the queue and makes it READY
// again.
func (e *Executor) RemoveFromQueue(task *tree.Node) error {
	e.mu.Lock()
	if !e.queue.Remove(task) {
		e.mu.Unlock()
		return ErrNotQueued
	}
	task.SetStateRecursively(tree.StateReady)
	listeners := e.listenersLocked()
	e.mu.Unlock()

	notify(listeners)
	return nil
}

// MoveUp swaps task with its predecessor in the queue.
func (e *Executor) MoveUp(task *tree.Node) bool {
	return e.reorder(task, e.queue.MoveUp)
}

// MoveDown swaps task with its successor in the queue.
func (e *Executor) MoveDown(task *tree.Node) bool {
	return e.reorder(task, e.queue.MoveDown)
}

func (e *Executor) reorder(task *tree.Node, move func(*tree.Node) bool) bool {
	e.mu.Lock()
	moved := move(task)
	var listeners []func()
	if moved {
		listeners = e.listenersLocked()
	}
	e.mu.Unlock()

	notify(listeners)
	return moved
}

// TerminateAll empties the queue and requests termination of the running
// task, if any.
func (e *Executor) TerminateAll() {
	e.mu.Lock()
	for _, t := range e.queue.Clear() {
		t.SetStateRecursively(tree.StateReady)
	}
	current := e.current
	listeners := e.listenersLocked()
	e.mu.Unlock()

	notify(listeners)
	if current != nil {
		if err := e.RequestTermination(current); err != nil && !errors.Is(err, api.ErrTerminationState) {
			e.logger.Debug("terminate all", slog.String("task", current.Name()), slog.Any("error", err))
		}
	}
}

// Next blocks until a task has been promoted to running or ctx ends.
func (e *Executor) Next(ctx context.Context) (*tree.Node, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case task := <-e.dispatch:
		return task, nil
	}
}

// ProcessOne waits for the next running task and executes it. The boolean
// result reports whether a task was executed.
func (e *Executor) ProcessOne(ctx context.Context) (bool, error) {
	task, err := e.Next(ctx)
	if err != nil {
		return false, err
	}
	return true, e.Execute(ctx, task)
}

// Execute runs task, which must be the current running task, to completion
// and starts the next queued task afterwards.
func (e *Executor) Execute(ctx context.Context, task *tree.Node) error {
	e.mu.Lock()
	if task == nil || task != e.current || e.run == nil {
		e.mu.Unlock()
		return api.ErrNotRunning
	}
	run := e.run
	e.mu.Unlock()

	// Termination cancels run.ctx synchronously; the worker context is
	// bridged in.
	execCtx, cancel := context.WithCancel(run.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	e.observer.OnTaskStart(execCtx, task)
	e.logger.Debug("task started", slog.String("task", task.Name()), slog.String("uuid", task.UUID()))

	state, err := e.runTask(execCtx, task, true)
	final := e.finish(task, state, err)

	e.observer.OnTaskFinished(ctx, task, final, err)
	if err != nil && !errors.Is(err, ErrTerminated) {
		return fmt.Errorf("task %q: %w", task.Name(), err)
	}
	return err
}

// finish applies the final states of a run and promotes the next task.
func (e *Executor) finish(task *tree.Node, state tree.State, err error) tree.State {
	e.mu.Lock()
	final := state
	switch {
	case task.State() == tree.StateTerminationRequested, errors.Is(err, ErrTerminated):
		final = tree.StateTerminated
	case final.Busy():
		final = tree.StateFailed
	}
	task.SetState(final)
	for _, d := range task.Descendants() {
		switch s := d.State(); {
		case s == tree.StateQueued:
			d.SetState(tree.StateSkipped)
		case s.Busy():
			d.SetState(final)
		}
	}

	if e.current == task {
		e.run.cancel()
		e.current = nil
		e.run = nil
	}
	e.startNextLocked()
	listeners := e.listenersLocked()
	e.mu.Unlock()

	notify(listeners)
	return final
}

func (e *Executor) listenersLocked() []func() {
	out := make([]func(), 0, len(e.listeners))
	for _, fn := range e.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
