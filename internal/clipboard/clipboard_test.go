package clipboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/proctree/pkg/api"
)

func samplePayload() api.Payload {
	return api.Payload{
		Format:              api.ClipboardFormat,
		Component:           []byte("component"),
		EmbeddedConnections: [][]byte{[]byte("c1"), []byte("c2")},
	}
}

func exerciseClipboard(t *testing.T, cb api.Clipboard) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := cb.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok, "fresh clipboard must be empty")

	require.NoError(t, cb.Set(ctx, samplePayload()))

	got, ok, err := cb.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, samplePayload(), got)

	second := api.Payload{Format: api.ClipboardFormat, Component: []byte("other")}
	require.NoError(t, cb.Set(ctx, second))
	got, _, err = cb.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("other"), got.Component)
	require.Empty(t, got.EmbeddedConnections)
}

func TestInMemory(t *testing.T) {
	exerciseClipboard(t, NewInMemory())
}

func TestInMemory_ReturnsCopies(t *testing.T) {
	cb := NewInMemory()
	ctx := context.Background()
	require.NoError(t, cb.Set(ctx, samplePayload()))

	got, _, _ := cb.Get(ctx)
	got.Component[0] = 'X'

	again, _, _ := cb.Get(ctx)
	require.Equal(t, byte('c'), again.Component[0])
}

func TestFile(t *testing.T) {
	exerciseClipboard(t, NewFile(filepath.Join(t.TempDir(), "state", "clipboard")))
}

func TestFile_SharedBetweenInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipboard")
	ctx := context.Background()

	require.NoError(t, NewFile(path).Set(ctx, samplePayload()))

	got, ok, err := NewFile(path).Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, samplePayload(), got)
}

func TestFile_CorruptContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipboard")
	require.NoError(t, os.WriteFile(path, []byte("not gob"), 0o600))

	_, _, err := NewFile(path).Get(context.Background())
	require.True(t, errors.Is(err, api.ErrInvalidClipboard))
}
