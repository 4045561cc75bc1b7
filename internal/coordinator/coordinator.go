// Package coordinator decides what a run request on any component of a
// process tree means: start, queue, stop or nothing. It works on top of an
// injected api.ExecutionService and never executes anything itself.
package coordinator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/petrijr/proctree/internal/connections"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// Outcome is the effect a Run call had.
type Outcome int

const (
	OutcomeStarted Outcome = iota
	OutcomeQueued
	OutcomeAlreadyQueued
	OutcomeStopRequested
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStarted:
		return "started"
	case OutcomeQueued:
		return "queued"
	case OutcomeAlreadyQueued:
		return "already queued"
	case OutcomeStopRequested:
		return "stop requested"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Action is what a run control for a component currently offers.
type Action int

const (
	ActionDisabled Action = iota
	ActionRun
	ActionQueue
	ActionAlreadyQueued
	ActionStop
	ActionTerminating
)

func (a Action) String() string {
	switch a {
	case ActionDisabled:
		return "Disabled"
	case ActionRun:
		return "Run"
	case ActionQueue:
		return "Add to queue"
	case ActionAlreadyQueued:
		return "Already queued"
	case ActionStop:
		return "Stop"
	case ActionTerminating:
		return "Terminating"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Enabled reports whether triggering the action does anything.
func (a Action) Enabled() bool {
	switch a {
	case ActionRun, ActionQueue, ActionStop:
		return true
	}
	return false
}

// Coordinator maps run and stop requests onto an ExecutionService.
type Coordinator struct {
	exec   api.ExecutionService
	logger *slog.Logger
}

// New creates a coordinator for exec.
func New(exec api.ExecutionService, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{exec: exec, logger: logger}
}

// Resolve returns the task a run request on node applies to.
func (c *Coordinator) Resolve(node *tree.Node) *tree.Node {
	if node == nil {
		return nil
	}
	return connections.HighestParentTask(node)
}

// Eligible returns a validation error when task may never run: it or an
// ancestor is a placeholder, it has a placeholder descendant, or it is
// skipped.
func (c *Coordinator) Eligible(task *tree.Node) error {
	switch {
	case task == nil:
		return api.Invalid("run", "", api.ErrInvalidTarget)
	case task.IsPlaceholder(), task.HasPlaceholderAncestor():
		return api.Invalid("run", task.Name(), fmt.Errorf("%w: placeholder", api.ErrNotEligible))
	case task.HasPlaceholderDescendants():
		return api.Invalid("run", task.Name(), fmt.Errorf("%w: contains placeholders", api.ErrNotEligible))
	case task.Skipped():
		return api.Invalid("run", task.Name(), fmt.Errorf("%w: skipped", api.ErrNotEligible))
	}
	return nil
}

// Run requests execution of the execution root of node. A request for the
// running task is a stop request.
func (c *Coordinator) Run(node *tree.Node) (Outcome, error) {
	task := c.Resolve(node)
	if task == nil {
		name := ""
		if node != nil {
			name = node.Name()
		}
		return 0, api.Invalid("run", name, api.ErrInvalidTarget)
	}

	if c.exec.CurrentRunning() == task {
		if err := c.exec.RequestTermination(task); err != nil {
			return OutcomeStopRequested, err
		}
		return OutcomeStopRequested, nil
	}

	if err := c.Eligible(task); err != nil {
		return 0, err
	}
	if c.exec.IsQueued(task) {
		c.logger.Info("task already queued", slog.String("task", task.Name()))
		return OutcomeAlreadyQueued, nil
	}

	if err := c.exec.Run(task); err != nil {
		if errors.Is(err, api.ErrAlreadyQueued) {
			return OutcomeAlreadyQueued, nil
		}
		return 0, err
	}
	if c.exec.IsQueued(task) {
		return OutcomeQueued, nil
	}
	return OutcomeStarted, nil
}

// RequestTermination asks the execution root of node to stop.
func (c *Coordinator) RequestTermination(node *tree.Node) error {
	task := c.Resolve(node)
	if task == nil {
		return api.ErrNotRunning
	}
	return c.exec.RequestTermination(task)
}

// Action returns the run control state for node.
func (c *Coordinator) Action(node *tree.Node) Action {
	task := c.Resolve(node)
	if task == nil {
		return ActionDisabled
	}
	running := c.exec.CurrentRunning()
	if running == task {
		if task.State() == tree.StateTerminationRequested {
			return ActionTerminating
		}
		return ActionStop
	}
	if c.Eligible(task) != nil {
		return ActionDisabled
	}
	if c.exec.IsQueued(task) {
		return ActionAlreadyQueued
	}
	if running != nil {
		return ActionQueue
	}
	return ActionRun
}

// Watch calls fn with the current action for node, and again after every
// queue change, until the returned function is called.
func (c *Coordinator) Watch(node *tree.Node, fn func(Action)) (stop func()) {
	fn(c.Action(node))
	return c.exec.OnQueueChanged(func() {
		fn(c.Action(node))
	})
}
