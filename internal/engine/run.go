package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/petrijr/proctree/internal/connections"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// runTask executes the children of task in order. The root of a run keeps its
// RUNNING (or TERMINATION_REQUESTED) state; finish sets its final state.
// Cancellation of ctx is only observed between children.
func (e *Executor) runTask(ctx context.Context, task *tree.Node, root bool) (tree.State, error) {
	if !root {
		if task.Skipped() {
			task.SetStateRecursively(tree.StateSkipped)
			return tree.StateSkipped, nil
		}
		task.SetState(tree.StateRunning)
	}
	settle := func(s tree.State) {
		if !root {
			task.SetState(s)
		}
	}

	children := task.Children()
	warned := false
	for i, child := range children {
		if ctx.Err() != nil {
			settle(tree.StateTerminated)
			return tree.StateTerminated, ErrTerminated
		}

		var (
			state tree.State
			err   error
		)
		switch child.Kind() {
		case tree.KindTask:
			state, err = e.runTask(ctx, child, false)
		case tree.KindCalculator:
			state, err = e.runCalculator(ctx, child)
		default:
			err = fmt.Errorf("%w: %s", tree.ErrSlotMismatch, child)
		}
		task.SetProgress((i + 1) * 100 / len(children))

		if errors.Is(err, ErrTerminated) {
			settle(tree.StateTerminated)
			return tree.StateTerminated, err
		}
		if err != nil {
			settle(tree.StateFailed)
			return tree.StateFailed, err
		}
		if state == tree.StateWarnFinished {
			warned = true
		}
	}
	if ctx.Err() != nil {
		settle(tree.StateTerminated)
		return tree.StateTerminated, ErrTerminated
	}

	final := tree.StateFinished
	if warned {
		final = tree.StateWarnFinished
	}
	task.SetProgress(100)
	settle(final)
	return final, nil
}

func (e *Executor) runCalculator(ctx context.Context, calc *tree.Node) (tree.State, error) {
	if calc.Skipped() {
		calc.SetState(tree.StateSkipped)
		return tree.StateSkipped, nil
	}

	calc.SetState(tree.StateConnecting)
	e.applyConnections(ctx, calc)

	calc.SetState(tree.StateRunning)
	e.observer.OnComponentStart(ctx, calc)
	start := time.Now()

	fn, err := e.registry.Calculator(calc.Class())
	if err == nil {
		err = fn(ctx, calc)
	}
	e.observer.OnComponentCompleted(ctx, calc, err, time.Since(start))

	switch {
	case err == nil:
		calc.SetState(tree.StateFinished)
		return tree.StateFinished, nil
	case api.IsWarning(err):
		calc.SetState(tree.StateWarnFinished)
		return tree.StateWarnFinished, nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		calc.SetState(tree.StateTerminated)
		return tree.StateTerminated, ErrTerminated
	default:
		calc.SetState(tree.StateFailed)
		return tree.StateFailed, fmt.Errorf("calculator %q: %w", calc.Name(), err)
	}
}

// applyConnections copies the source property of every connection that
// targets calc onto calc. Connections are owned by the root task.
func (e *Executor) applyConnections(ctx context.Context, calc *tree.Node) {
	root := connections.HighestParentTask(calc)
	if root == nil {
		return
	}
	for _, c := range root.Connections() {
		if c.TargetUUID() != calc.UUID() {
			continue
		}
		src := root.FindByUUID(c.SourceUUID())
		if src == nil {
			e.logger.WarnContext(ctx, "connection source missing",
				slog.String("connection", c.String()),
				slog.String("target", calc.Name()),
			)
			continue
		}
		v, ok := src.Property(c.SourceProperty())
		if !ok {
			e.logger.WarnContext(ctx, "connection source property missing",
				slog.String("connection", c.String()),
				slog.String("source", src.Name()),
			)
			continue
		}
		calc.SetProperty(c.TargetProperty(), v)
	}
}
