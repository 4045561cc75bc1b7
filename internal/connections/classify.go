package connections

import "github.com/petrijr/proctree/pkg/tree"

// Classification partitions the connections related to a subtree.
type Classification struct {
	// Internal connections stay satisfiable when the subtree is moved or
	// duplicated as a whole.
	Internal []*tree.Connection
	// Lost connections join a strict descendant to a node outside the
	// subtree and cannot follow it.
	Lost []*tree.Connection
	// Boundary connections join the subtree root itself to a node outside
	// the subtree. They are neither internal nor lost and only exist for
	// tasks.
	Boundary []*tree.Connection
}

// Related returns Internal followed by Lost.
func (c Classification) Related() []*tree.Connection {
	out := make([]*tree.Connection, 0, len(c.Internal)+len(c.Lost))
	out = append(out, c.Internal...)
	return append(out, c.Lost...)
}

// Classify inspects the connections stored on the execution root of t.
//
// For a task, a connection is internal when both endpoints are strict
// descendants of t, or when one is t and the other a strict descendant. It
// is lost when exactly one endpoint is a strict descendant and the other
// lies outside t. A connection between t and the outside is a boundary
// connection. For a calculator nothing is internal and every connection
// touching it or a nested calculator is lost.
func Classify(t *tree.Node) Classification {
	var out Classification
	root := HighestParentTask(t)
	if t == nil || root == nil {
		return out
	}

	desc := descendantIDs(t)
	self := t.UUID()
	for _, c := range root.Connections() {
		src, tgt := c.SourceUUID(), c.TargetUUID()
		srcIn := desc[src] || src == self
		tgtIn := desc[tgt] || tgt == self
		switch {
		case !srcIn && !tgtIn:
			continue
		case !t.IsTask():
			out.Lost = append(out.Lost, c)
		case srcIn && tgtIn:
			out.Internal = append(out.Internal, c)
		case desc[src] || desc[tgt]:
			out.Lost = append(out.Lost, c)
		default:
			out.Boundary = append(out.Boundary, c)
		}
	}
	return out
}

// Internal returns the connections that are internal to t.
func Internal(t *tree.Node) []*tree.Connection { return Classify(t).Internal }

// Lost returns the connections that escape t.
func Lost(t *tree.Node) []*tree.Connection { return Classify(t).Lost }

// Related returns the internal and lost connections of t.
func Related(t *tree.Node) []*tree.Connection { return Classify(t).Related() }

// Boundary returns the connections between task t itself and nodes outside t.
func Boundary(t *tree.Node) []*tree.Connection { return Classify(t).Boundary }

// descendantIDs holds the strict descendants of t.
func descendantIDs(t *tree.Node) map[string]bool {
	ids := map[string]bool{}
	t.Walk(func(n *tree.Node) bool {
		ids[n.UUID()] = true
		return true
	})
	return ids
}
