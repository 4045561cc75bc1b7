package editor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/proctree/internal/engine"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

func TestAdd(t *testing.T) {
	f := newFixture(t)

	res, err := f.editor.AddTask(f.ctx, f.group, "", "R")
	require.NoError(t, err)
	require.Equal(t, "R[1]", res.Node.Name())
	require.True(t, res.Node.IsTask())

	res, err = f.editor.AddCalculator(f.ctx, f.r2, engine.ClassConstant, "k", []tree.Property{{Ident: engine.PropValue, Value: 4}})
	require.NoError(t, err)
	v, _ := res.Node.Property(engine.PropValue)
	require.Equal(t, 4, v)

	_, err = f.editor.AddCalculator(f.ctx, f.group, engine.ClassConstant, "k", nil)
	require.ErrorIs(t, err, api.ErrInvalidTarget)

	_, err = f.editor.AddCalculator(f.ctx, f.r2, "Nope", "n", nil)
	require.ErrorIs(t, err, api.ErrUnknownClass)

	_, err = f.editor.AddTask(f.ctx, f.r2, engine.ClassSum, "wrong kind")
	require.ErrorIs(t, err, api.ErrInvalidTarget)

	_, err = f.editor.AddTask(f.ctx, f.r2, "", "")
	require.ErrorIs(t, err, api.ErrValidation)
}

func TestConnect(t *testing.T) {
	f := newFixture(t)

	c, err := f.editor.Connect(f.ctx, f.x, engine.PropOutput, f.b, engine.PropB)
	require.NoError(t, err)
	require.Equal(t, f.r, c.Owner())
	require.Len(t, f.r.Connections(), 3)

	_, err = f.editor.Connect(f.ctx, f.x, engine.PropOutput, f.b, engine.PropB)
	require.ErrorIs(t, err, ErrDuplicateConnection)

	_, err = f.editor.Connect(f.ctx, f.x, engine.PropOutput, f.y, engine.PropValue)
	require.ErrorIs(t, err, ErrCrossRoot)

	_, err = f.editor.Connect(f.ctx, f.x, engine.PropOutput, f.x, engine.PropOutput)
	require.ErrorIs(t, err, api.ErrValidation)

	require.NoError(t, f.editor.Disconnect(f.ctx, c))
	require.Nil(t, c.Owner())
	require.Len(t, f.r.Connections(), 2)
	require.ErrorIs(t, f.editor.Disconnect(f.ctx, c), api.ErrValidation)
}

func TestSetLinkRenameSkip(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.editor.SetLink(f.ctx, f.x, "ref", f.y))
	link, _ := f.x.Property("ref")
	require.Equal(t, tree.RelativeLink(f.y.UUID()), link)

	require.NoError(t, f.editor.SetLink(f.ctx, f.x, "ref", nil))
	link, _ = f.x.Property("ref")
	require.Equal(t, tree.RelativeLink(""), link)

	require.ErrorIs(t, f.editor.SetLink(f.ctx, f.x, "ref", tree.NewTask("elsewhere")), api.ErrInvalidTarget)

	require.NoError(t, f.editor.SetProperty(f.ctx, f.x, engine.PropValue, 7))
	v, _ := f.x.Property(engine.PropValue)
	require.Equal(t, 7, v)

	require.ErrorIs(t, f.editor.Rename(f.ctx, f.x, "S"), tree.ErrDuplicateName)
	require.NoError(t, f.editor.Rename(f.ctx, f.x, "x"))
	require.NoError(t, f.editor.Rename(f.ctx, f.x, "input"))
	require.Equal(t, "input", f.x.Name())

	require.NoError(t, f.editor.Skip(f.ctx, f.s, true))
	require.True(t, f.s.Skipped())
	require.True(t, f.s.Ready(), "skipped components stay editable")
	require.ErrorIs(t, f.editor.Skip(f.ctx, f.group, true), api.ErrValidation)
}
