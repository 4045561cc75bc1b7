package api

import (
	"context"

	"github.com/petrijr/proctree/pkg/tree"
)

// ClipboardFormat tags payloads produced by the editor.
const ClipboardFormat = "application/x-proctree-component"

// Payload is one clipboard entry: a component snapshot plus the connections
// that travel with it.
type Payload struct {
	Format              string
	Component           []byte
	EmbeddedConnections [][]byte
}

// Clipboard stores the most recent Payload.
type Clipboard interface {
	Set(ctx context.Context, p Payload) error
	// Get returns the stored payload; ok is false when the clipboard is empty.
	Get(ctx context.Context) (p Payload, ok bool, err error)
}

// Serializer turns components and connections into bytes and back.
type Serializer interface {
	Snapshot(n *tree.Node) ([]byte, error)
	SnapshotConnection(c *tree.Connection) ([]byte, error)
	Restore(data []byte, f tree.Factory) (*tree.Node, error)
	RestoreConnection(data []byte) (*tree.Connection, error)
	// CanRestoreAs reports whether data restores to a known component of
	// the given kind.
	CanRestoreAs(data []byte, kind tree.Kind, f tree.Factory) bool
}

// EditResult describes the outcome of a structural edit.
type EditResult struct {
	// Node is the component the edit produced or acted on.
	Node *tree.Node
	// Diagnostics lists the non-blocking issues met along the way, typed as
	// *StructuralIntegrityWarning or *MatchingFailure.
	Diagnostics []error
}
