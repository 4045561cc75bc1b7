package proctree

import (
	"log/slog"

	"github.com/petrijr/proctree/internal/coordinator"
	"github.com/petrijr/proctree/internal/editor"
	"github.com/petrijr/proctree/internal/engine"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// Re-export key types so users don't need to dig into pkg/api and pkg/tree.

type (
	Node         = tree.Node
	Kind         = tree.Kind
	State        = tree.State
	Property     = tree.Property
	RelativeLink = tree.RelativeLink
	Connection   = tree.Connection
	Factory      = tree.Factory

	EditResult       = api.EditResult
	Payload          = api.Payload
	Clipboard        = api.Clipboard
	Serializer       = api.Serializer
	Transactions     = api.Transactions
	ExecutionService = api.ExecutionService
	Event            = api.Event

	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver

	Executor       = engine.Executor
	Registry       = engine.Registry
	CalculatorFunc = engine.CalculatorFunc
	Editor         = editor.Editor
	EditorConfig   = editor.Config
	Confirmer      = editor.Confirmer
	ConfirmFunc    = editor.ConfirmFunc
	Coordinator    = coordinator.Coordinator
	Outcome        = coordinator.Outcome
	Action         = coordinator.Action
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	Warning              = api.Warning
)

// Re-export state values for convenience.

const (
	StateReady                = tree.StateReady
	StateQueued               = tree.StateQueued
	StateRunning              = tree.StateRunning
	StateConnecting           = tree.StateConnecting
	StateTerminationRequested = tree.StateTerminationRequested
	StateTerminated           = tree.StateTerminated
	StateFinished             = tree.StateFinished
	StateWarnFinished         = tree.StateWarnFinished
	StateFailed               = tree.StateFailed
	StateSkipped              = tree.StateSkipped
)

// Built-in calculator classes.

const (
	ClassConstant = engine.ClassConstant
	ClassSum      = engine.ClassSum
	ClassSleep    = engine.ClassSleep
	ClassFail     = engine.ClassFail
	ClassWarn     = engine.ClassWarn
)

const (
	OutcomeStarted       = coordinator.OutcomeStarted
	OutcomeQueued        = coordinator.OutcomeQueued
	OutcomeAlreadyQueued = coordinator.OutcomeAlreadyQueued
	OutcomeStopRequested = coordinator.OutcomeStopRequested
)

// NewGroup creates an empty process group.
func NewGroup(name string) *Node {
	return tree.NewGroup(name)
}

// NewRegistry returns a registry with the default task class and the
// built-in calculators.
func NewRegistry() *Registry {
	return engine.NewDefaultRegistry()
}

// Executor constructors.
// These wrap the internal/engine package so external callers never need to
// import internal packages.

// NewExecutor returns an idle executor with the built-in calculators.
func NewExecutor() *Executor {
	return engine.NewExecutor(engine.Config{})
}

// NewExecutorWithObserver returns an idle executor reporting to obs.
func NewExecutorWithObserver(obs Observer) *Executor {
	return engine.NewExecutor(engine.Config{Observer: obs})
}

// NewExecutorWithRegistry returns an idle executor that executes the
// calculators registered in reg.
func NewExecutorWithRegistry(reg *Registry, obs Observer, logger *slog.Logger) *Executor {
	return engine.NewExecutor(engine.Config{Registry: reg, Observer: obs, Logger: logger})
}

// NewEditor returns an editor. Zero config fields get in-memory defaults.
func NewEditor(cfg EditorConfig) *Editor {
	return editor.New(cfg)
}

// NewCoordinator returns a coordinator mapping run and stop requests onto
// exec.
func NewCoordinator(exec ExecutionService) *Coordinator {
	return coordinator.New(exec, nil)
}
