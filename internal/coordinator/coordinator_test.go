package coordinator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/proctree/internal/engine"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

type fixture struct {
	group *tree.Node
	a, b  *tree.Node
	calcA *tree.Node
	exec  *engine.Executor
	coord *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		group: tree.NewGroup("process"),
		a:     tree.NewTask("A"),
		b:     tree.NewTask("B"),
	}
	require.NoError(t, f.group.AppendChild(f.a))
	require.NoError(t, f.group.AppendChild(f.b))

	inner := tree.NewTask("inner")
	require.NoError(t, f.a.AppendChild(inner))
	f.calcA = tree.NewCalculator(engine.ClassConstant, "c")
	f.calcA.SetProperty(engine.PropValue, 1)
	require.NoError(t, inner.AppendChild(f.calcA))

	f.exec = engine.NewExecutor(engine.Config{})
	f.coord = New(f.exec, nil)
	return f
}

func TestRun_TransitionTable(t *testing.T) {
	f := newFixture(t)

	out, err := f.coord.Run(f.a)
	require.NoError(t, err)
	require.Equal(t, OutcomeStarted, out)
	require.Equal(t, tree.StateRunning, f.a.State())

	out, err = f.coord.Run(f.b)
	require.NoError(t, err)
	require.Equal(t, OutcomeQueued, out)
	require.Equal(t, tree.StateQueued, f.b.State())

	out, err = f.coord.Run(f.b)
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyQueued, out)
	require.Len(t, f.exec.Queue(), 1)

	out, err = f.coord.Run(f.a)
	require.NoError(t, err)
	require.Equal(t, OutcomeStopRequested, out)
	require.Equal(t, tree.StateTerminationRequested, f.a.State())

	_, err = f.coord.Run(f.a)
	require.ErrorIs(t, err, api.ErrTerminationState)
	require.ErrorIs(t, f.coord.RequestTermination(f.a), api.ErrTerminationState)
}

func TestRun_ResolvesExecutionRoot(t *testing.T) {
	f := newFixture(t)

	out, err := f.coord.Run(f.calcA)
	require.NoError(t, err)
	require.Equal(t, OutcomeStarted, out)
	require.Equal(t, f.a, f.exec.CurrentRunning())

	out, err = f.coord.Run(f.calcA)
	require.NoError(t, err)
	require.Equal(t, OutcomeStopRequested, out)
}

func TestRun_RejectsIneligibleTasks(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.Run(f.group)
	require.ErrorIs(t, err, api.ErrValidation)
	require.ErrorIs(t, err, api.ErrInvalidTarget)

	f.b.SetSkipped(true)
	_, err = f.coord.Run(f.b)
	require.ErrorIs(t, err, api.ErrNotEligible)

	require.NoError(t, f.a.AppendChild(tree.NewPlaceholder(tree.KindCalculator, "Gone", "p")))
	_, err = f.coord.Run(f.a)
	require.ErrorIs(t, err, api.ErrNotEligible)

	require.Nil(t, f.exec.CurrentRunning())
	require.Empty(t, f.exec.Queue())
}

func TestRequestTermination_RequiresRunningTask(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.coord.RequestTermination(f.a), api.ErrNotRunning)
	require.ErrorIs(t, f.coord.RequestTermination(f.group), api.ErrNotRunning)
}

func TestAction(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, ActionDisabled, f.coord.Action(f.group))
	require.Equal(t, ActionRun, f.coord.Action(f.calcA))

	_, err := f.coord.Run(f.a)
	require.NoError(t, err)
	require.Equal(t, ActionStop, f.coord.Action(f.a))
	require.Equal(t, ActionQueue, f.coord.Action(f.b))

	_, err = f.coord.Run(f.b)
	require.NoError(t, err)
	require.Equal(t, ActionAlreadyQueued, f.coord.Action(f.b))
	require.False(t, ActionAlreadyQueued.Enabled())

	require.NoError(t, f.coord.RequestTermination(f.a))
	require.Equal(t, ActionTerminating, f.coord.Action(f.a))

	f.b.SetSkipped(true)
	require.Equal(t, ActionDisabled, f.coord.Action(f.b))
}

func TestWatch_FollowsQueueChanges(t *testing.T) {
	f := newFixture(t)

	var (
		mu      sync.Mutex
		actions []Action
	)
	stop := f.coord.Watch(f.b, func(a Action) {
		mu.Lock()
		actions = append(actions, a)
		mu.Unlock()
	})
	defer stop()

	_, err := f.coord.Run(f.a)
	require.NoError(t, err)
	_, err = f.coord.Run(f.b)
	require.NoError(t, err)

	_, err = f.exec.ProcessOne(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []Action{ActionRun, ActionQueue, ActionAlreadyQueued, ActionStop}, actions)
}
