package editor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

func names(n *tree.Node) []string {
	var out []string
	for _, c := range n.Children() {
		out = append(out, c.Name())
	}
	return out
}

func TestMove_WithinExecutionRootKeepsConnections(t *testing.T) {
	f := newFixture(t)

	res, err := f.editor.Move(f.ctx, []*tree.Node{f.a}, f.r, 0)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	require.Equal(t, []string{"a", "x", "S"}, names(f.r))
	require.Equal(t, []*tree.Connection{f.ab, f.xa}, f.r.Connections())
	require.Equal(t, []string{"Move"}, f.journal.Labels())
}

func TestMove_ToAnotherRootRehomesInternalAndDropsLost(t *testing.T) {
	f := newFixture(t)

	res, err := f.editor.Move(f.ctx, []*tree.Node{f.s}, f.r2, -1)
	require.NoError(t, err)
	require.Equal(t, 1, countIs(res.Diagnostics, api.ErrLostConnection))

	require.Equal(t, f.r2, f.s.Parent())
	require.Equal(t, []string{"y", "S"}, names(f.r2))
	require.Empty(t, f.r.Connections())
	require.Equal(t, []*tree.Connection{f.ab}, f.r2.Connections())
	require.Equal(t, f.a.UUID(), f.ab.SourceUUID(), "moved objects keep their identity")
}

func TestMove_ToAnotherRootDropsConnectionsOfTheTaskItself(t *testing.T) {
	f := newFixture(t)
	sx := f.linkTaskToX(t)

	res, err := f.editor.Move(f.ctx, []*tree.Node{f.s}, f.r2, -1)
	require.NoError(t, err)
	require.Equal(t, 2, countIs(res.Diagnostics, api.ErrLostConnection))

	require.Empty(t, f.r.Connections())
	require.Equal(t, []*tree.Connection{f.ab}, f.r2.Connections())
	require.Nil(t, sx.Owner())
}

func TestMove_WithinExecutionRootKeepsConnectionsOfTheTaskItself(t *testing.T) {
	f := newFixture(t)
	sx := f.linkTaskToX(t)

	res, err := f.editor.Move(f.ctx, []*tree.Node{f.s}, f.r, 0)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []*tree.Connection{f.ab, f.xa, sx}, f.r.Connections())
}

func TestMove_TaskBecomesExecutionRoot(t *testing.T) {
	f := newFixture(t)

	_, err := f.editor.Move(f.ctx, []*tree.Node{f.s}, f.group, 1)
	require.NoError(t, err)

	require.Equal(t, []string{"R", "S", "R2"}, names(f.group))
	require.Equal(t, []*tree.Connection{f.ab}, f.s.Connections())
	require.Empty(t, f.r.Connections())
}

func TestMove_RootTaskIntoAnotherTask(t *testing.T) {
	f := newFixture(t)
	yx := tree.NewConnection(f.y.UUID(), "output", f.y.UUID(), "value")
	require.NoError(t, f.r2.AttachConnection(yx))

	res, err := f.editor.Move(f.ctx, []*tree.Node{f.r2}, f.s, -1)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	require.Equal(t, f.s, f.r2.Parent())
	require.Empty(t, f.r2.Connections())
	require.Contains(t, f.r.Connections(), yx)
	require.Len(t, f.r.Connections(), 3)
}

func TestMove_BeforeCalculatorTarget(t *testing.T) {
	f := newFixture(t)

	_, err := f.editor.Move(f.ctx, []*tree.Node{f.y}, f.b, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "y", "b"}, names(f.s))
}

func TestMove_SeveralNodesKeepOrderAndGetUniqueNames(t *testing.T) {
	f := newFixture(t)
	clash := constant("a", 9)
	require.NoError(t, f.r2.AppendChild(clash))

	_, err := f.editor.Move(f.ctx, []*tree.Node{f.y, clash}, f.s, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "y", "a[1]", "b"}, names(f.s))
	require.Zero(t, f.r2.ChildCount())
}

func TestMove_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		nodes  []*tree.Node
		target *tree.Node
	}{
		{"into own descendant", []*tree.Node{f.r}, f.s},
		{"into itself", []*tree.Node{f.s}, f.s},
		{"mixed parents", []*tree.Node{f.x, f.a}, f.r2},
		{"calculator into group", []*tree.Node{f.x}, f.group},
		{"nothing selected", nil, f.r2},
		{"group", []*tree.Node{f.group}, f.r2},
		{"next to itself", []*tree.Node{f.a}, f.a},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.editor.Move(f.ctx, tc.nodes, tc.target, -1)
			require.ErrorIs(t, err, api.ErrValidation)
		})
	}

	f.r2.SetState(tree.StateRunning)
	_, err := f.editor.Move(f.ctx, []*tree.Node{f.x}, f.r2, -1)
	require.ErrorIs(t, err, api.ErrNotReady)

	require.Empty(t, f.journal.Entries())
	require.Equal(t, []string{"x", "S"}, names(f.r))
}
