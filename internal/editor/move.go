package editor

import (
	"context"
	"fmt"

	"github.com/petrijr/proctree/internal/connections"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// Move re-parents nodes, which must share a parent, onto target:
//
//   - a task or group target receives the nodes at row, or appended when row
//     is out of range;
//   - a calculator target receives them as siblings right before itself.
//
// Connections are classified before the move. When the execution root
// changes, internal connections move to the new root while lost ones and
// those between a moved task and the rest of its old root are destroyed and
// reported; otherwise connections are left alone.
func (e *Editor) Move(ctx context.Context, nodes []*tree.Node, target *tree.Node, row int) (*api.EditResult, error) {
	parent, before, err := e.movePlan(nodes, target, row)
	if err != nil {
		return nil, err
	}

	cmd := e.begin(parent.Top(), "Move")
	res := &api.EditResult{Node: parent}
	defer e.commit(ctx, cmd, res)

	for _, n := range nodes {
		oldRoot := connections.HighestParentTask(n)
		cls := connections.Classify(n)
		const reason = "moved to another execution root"
		lost := connections.Warnings(n, cls.Lost, reason)
		lost = append(lost, connections.Warnings(n, cls.Boundary, reason)...)

		if n.Parent() != parent {
			n.Detach()
			if err := n.SetName(parent.UniqueChildName(n.Name())); err != nil {
				return res, err
			}
		} else {
			n.Detach()
		}
		if err := parent.InsertChild(n, parent.IndexOf(before)); err != nil {
			return res, fmt.Errorf("move %q: %w", n.Name(), err)
		}

		newRoot := connections.HighestParentTask(n)
		if oldRoot == newRoot {
			continue
		}
		res.Diagnostics = append(res.Diagnostics, lost...)
		for _, c := range append(cls.Lost, cls.Boundary...) {
			if owner := c.Owner(); owner != nil {
				owner.DetachConnection(c)
			}
		}
		for _, c := range cls.Internal {
			if err := newRoot.AttachConnection(c); err != nil {
				return res, fmt.Errorf("move %q: %w", n.Name(), err)
			}
		}
	}
	return res, nil
}

// movePlan validates a move and returns the new parent and the sibling the
// nodes are inserted before (nil to append).
func (e *Editor) movePlan(nodes []*tree.Node, target *tree.Node, row int) (*tree.Node, *tree.Node, error) {
	if len(nodes) == 0 {
		return nil, nil, api.Invalid("move", "", fmt.Errorf("%w: nothing selected", api.ErrInvalidTarget))
	}
	if err := requireReady("move", target); err != nil {
		return nil, nil, err
	}

	moving := make(map[*tree.Node]bool, len(nodes))
	from := nodes[0].Parent()
	for _, n := range nodes {
		if err := e.removable("move", n); err != nil {
			return nil, nil, err
		}
		if n.Parent() != from {
			return nil, nil, api.Invalid("move", n.Name(), fmt.Errorf("%w: selection spans several parents", api.ErrInvalidTarget))
		}
		if moving[n] {
			return nil, nil, api.Invalid("move", n.Name(), fmt.Errorf("%w: selected twice", api.ErrInvalidTarget))
		}
		moving[n] = true
	}

	var parent, before *tree.Node
	switch target.Kind() {
	case tree.KindCalculator:
		parent, before = target.Parent(), target
		if parent == nil {
			return nil, nil, api.Invalid("move", target.Name(), api.ErrInvalidTarget)
		}
	default:
		parent = target
		if row >= 0 {
			for i := row; i < parent.ChildCount(); i++ {
				if c := parent.Child(i); !moving[c] {
					before = c
					break
				}
			}
		}
	}
	if moving[before] {
		return nil, nil, api.Invalid("move", target.Name(), fmt.Errorf("%w: cannot move next to itself", api.ErrInvalidTarget))
	}

	for _, n := range nodes {
		if n == parent || n.IsAncestorOf(parent) {
			return nil, nil, api.Invalid("move", n.Name(), fmt.Errorf("%w: %w", api.ErrInvalidTarget, tree.ErrCycle))
		}
		if !parent.Accepts(n) {
			return nil, nil, api.Invalid("move", n.Name(), fmt.Errorf("%w: %s cannot hold %s", api.ErrInvalidTarget, parent, n))
		}
	}
	return parent, before, nil
}
