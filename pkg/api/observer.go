package api

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/petrijr/proctree/pkg/tree"
)

// Observer receives callbacks from the executor and the editor for logging,
// metrics and history.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay execution or editing.
type Observer interface {
	// OnTaskQueued is called when a task enters the run queue.
	OnTaskQueued(ctx context.Context, task *tree.Node)

	// OnTaskStart is called when a task becomes the running task.
	OnTaskStart(ctx context.Context, task *tree.Node)

	// OnTaskFinished is called once a run is over, with the final state of
	// the task. err is non-nil for failed runs.
	OnTaskFinished(ctx context.Context, task *tree.Node, state tree.State, err error)

	// OnTerminationRequested is called when a stop of the running task was
	// accepted.
	OnTerminationRequested(ctx context.Context, task *tree.Node)

	// OnComponentStart is called before a component of a running task executes.
	OnComponentStart(ctx context.Context, comp *tree.Node)

	// OnComponentCompleted is called after a component returns, for both
	// successes and failures (err != nil).
	OnComponentCompleted(ctx context.Context, comp *tree.Node, err error, duration time.Duration)

	// OnEditCommitted is called after a structural edit closed its command.
	OnEditCommitted(ctx context.Context, label string, scope *tree.Node)

	// OnDiagnostic is called for every non-blocking issue an edit ran into,
	// such as lost connections or failed equivalence matches.
	OnDiagnostic(ctx context.Context, op string, diag error)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnTaskQueued(ctx context.Context, task *tree.Node)           {}
func (NoopObserver) OnTaskStart(ctx context.Context, task *tree.Node)            {}
func (NoopObserver) OnTerminationRequested(ctx context.Context, task *tree.Node) {}
func (NoopObserver) OnComponentStart(ctx context.Context, comp *tree.Node)       {}
func (NoopObserver) OnTaskFinished(ctx context.Context, task *tree.Node, state tree.State, err error) {
}
func (NoopObserver) OnComponentCompleted(ctx context.Context, comp *tree.Node, err error, d time.Duration) {
}
func (NoopObserver) OnEditCommitted(ctx context.Context, label string, scope *tree.Node) {}
func (NoopObserver) OnDiagnostic(ctx context.Context, op string, diag error)             {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnTaskQueued(ctx context.Context, task *tree.Node) {
	for _, o := range c.observers {
		o.OnTaskQueued(ctx, task)
	}
}

func (c *CompositeObserver) OnTaskStart(ctx context.Context, task *tree.Node) {
	for _, o := range c.observers {
		o.OnTaskStart(ctx, task)
	}
}

func (c *CompositeObserver) OnTaskFinished(ctx context.Context, task *tree.Node, state tree.State, err error) {
	for _, o := range c.observers {
		o.OnTaskFinished(ctx, task, state, err)
	}
}

func (c *CompositeObserver) OnTerminationRequested(ctx context.Context, task *tree.Node) {
	for _, o := range c.observers {
		o.OnTerminationRequested(ctx, task)
	}
}

func (c *CompositeObserver) OnComponentStart(ctx context.Context, comp *tree.Node) {
	for _, o := range c.observers {
		o.OnComponentStart(ctx, comp)
	}
}

func (c *CompositeObserver) OnComponentCompleted(ctx context.Context, comp *tree.Node, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnComponentCompleted(ctx, comp, err, d)
	}
}

func (c *CompositeObserver) OnEditCommitted(ctx context.Context, label string, scope *tree.Node) {
	for _, o := range c.observers {
		o.OnEditCommitted(ctx, label, scope)
	}
}

func (c *CompositeObserver) OnDiagnostic(ctx context.Context, op string, diag error) {
	for _, o := range c.observers {
		o.OnDiagnostic(ctx, op, diag)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs execution and edit events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnTaskQueued(ctx context.Context, task *tree.Node) {
	o.Logger.InfoContext(ctx, "task_queued",
		slog.String("task", task.Name()),
		slog.String("uuid", task.UUID()),
	)
}

func (o *LoggingObserver) OnTaskStart(ctx context.Context, task *tree.Node) {
	o.Logger.InfoContext(ctx, "task_start",
		slog.String("task", task.Name()),
		slog.String("uuid", task.UUID()),
	)
}

func (o *LoggingObserver) OnTaskFinished(ctx context.Context, task *tree.Node, state tree.State, err error) {
	level := slog.LevelInfo
	if err != nil || state == tree.StateFailed {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "task_finished",
		slog.String("task", task.Name()),
		slog.String("uuid", task.UUID()),
		slog.String("state", string(state)),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnTerminationRequested(ctx context.Context, task *tree.Node) {
	o.Logger.InfoContext(ctx, "task_termination_requested",
		slog.String("task", task.Name()),
		slog.String("uuid", task.UUID()),
	)
}

func (o *LoggingObserver) OnComponentStart(ctx context.Context, comp *tree.Node) {
	o.Logger.DebugContext(ctx, "component_start",
		slog.String("component", comp.Name()),
		slog.String("class", comp.Class()),
	)
}

func (o *LoggingObserver) OnComponentCompleted(ctx context.Context, comp *tree.Node, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
		if IsWarning(err) {
			level = slog.LevelWarn
		}
	}
	o.Logger.Log(ctx, level, "component_completed",
		slog.String("component", comp.Name()),
		slog.String("class", comp.Class()),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnEditCommitted(ctx context.Context, label string, scope *tree.Node) {
	attrs := []any{slog.String("label", label)}
	if scope != nil {
		attrs = append(attrs, slog.String("scope", scope.Name()))
	}
	o.Logger.InfoContext(ctx, "edit_committed", attrs...)
}

func (o *LoggingObserver) OnDiagnostic(ctx context.Context, op string, diag error) {
	o.Logger.WarnContext(ctx, "edit_diagnostic",
		slog.String("op", op),
		slog.Any("diagnostic", diag),
	)
}

// BasicMetrics collects simple counters and aggregate component durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	tasksStarted        atomic.Int64
	tasksFinished       atomic.Int64
	tasksFailed         atomic.Int64
	tasksTerminated     atomic.Int64
	componentsCompleted atomic.Int64
	totalDuration       atomic.Int64 // nanoseconds
	lostConnections     atomic.Int64
	matchFailures       atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	TasksStarted    int64
	TasksFinished   int64
	TasksFailed     int64
	TasksTerminated int64

	ComponentsCompleted  int64
	AvgComponentDuration time.Duration

	LostConnections int64
	MatchFailures   int64
}

func (m *BasicMetrics) OnTaskStart(ctx context.Context, task *tree.Node) {
	m.tasksStarted.Add(1)
}

func (m *BasicMetrics) OnTaskFinished(ctx context.Context, task *tree.Node, state tree.State, err error) {
	switch state {
	case tree.StateFinished, tree.StateWarnFinished:
		m.tasksFinished.Add(1)
	case tree.StateTerminated:
		m.tasksTerminated.Add(1)
	default:
		m.tasksFailed.Add(1)
	}
}

func (m *BasicMetrics) OnComponentCompleted(ctx context.Context, comp *tree.Node, err error, d time.Duration) {
	// Only count successful components for average duration.
	if err == nil || IsWarning(err) {
		m.componentsCompleted.Add(1)
		m.totalDuration.Add(d.Nanoseconds())
	}
}

func (m *BasicMetrics) OnDiagnostic(ctx context.Context, op string, diag error) {
	switch {
	case errors.Is(diag, ErrLostConnection):
		m.lostConnections.Add(1)
	case errors.Is(diag, ErrNoMatch):
		m.matchFailures.Add(1)
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	completed := m.componentsCompleted.Load()
	totalNs := m.totalDuration.Load()

	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(totalNs / completed)
	}

	return BasicMetricsSnapshot{
		TasksStarted:         m.tasksStarted.Load(),
		TasksFinished:        m.tasksFinished.Load(),
		TasksFailed:          m.tasksFailed.Load(),
		TasksTerminated:      m.tasksTerminated.Load(),
		ComponentsCompleted:  completed,
		AvgComponentDuration: avg,
		LostConnections:      m.lostConnections.Load(),
		MatchFailures:        m.matchFailures.Load(),
	}
}
