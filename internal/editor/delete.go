package editor

import (
	"context"
	"fmt"

	"github.com/petrijr/proctree/internal/connections"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// Cut copies node to the clipboard and removes it together with every
// connection touching it. Internal connections survive in the clipboard
// copy; lost ones are reported.
func (e *Editor) Cut(ctx context.Context, node *tree.Node) (*api.EditResult, error) {
	if err := e.removable("cut", node); err != nil {
		return nil, err
	}

	d := e.duplicate(node)
	if err := e.toClipboard(ctx, d); err != nil {
		return nil, err
	}

	cmd := e.begin(node.Parent(), "Cut")
	res := &api.EditResult{Node: node, Diagnostics: d.failures}
	defer e.commit(ctx, cmd, res)

	res.Diagnostics = append(res.Diagnostics, e.remove(node, "cut")...)
	return res, nil
}

// Delete removes nodes and every connection touching them. All nodes must be
// ready, otherwise nothing is deleted. A configured Confirmer must approve
// the deletion; declining returns api.ErrCancelled.
//
// Selected nodes below another selected node are removed with their
// ancestor and not processed on their own.
func (e *Editor) Delete(ctx context.Context, nodes ...*tree.Node) (*api.EditResult, error) {
	if len(nodes) == 0 {
		return &api.EditResult{}, nil
	}
	for _, n := range nodes {
		if err := e.removable("delete", n); err != nil {
			return nil, err
		}
	}

	if e.confirm != nil {
		ok, err := e.confirm.Confirm(ctx, nodes)
		if err != nil {
			return nil, fmt.Errorf("confirm delete: %w", err)
		}
		if !ok {
			return nil, api.ErrCancelled
		}
	}

	selection := topmost(nodes)
	cmd := e.begin(selection[0].Top(), "Delete")
	res := &api.EditResult{}
	defer e.commit(ctx, cmd, res)

	for _, n := range selection {
		res.Diagnostics = append(res.Diagnostics, e.remove(n, "deleted")...)
	}
	return res, nil
}

func (e *Editor) removable(op string, n *tree.Node) error {
	if err := requireReady(op, n); err != nil {
		return err
	}
	if n.Parent() == nil {
		return api.Invalid(op, n.Name(), fmt.Errorf("%w: detached or top-level component", api.ErrInvalidTarget))
	}
	return nil
}

// topmost drops duplicates and every node that has a selected ancestor,
// keeping the selection order.
func topmost(nodes []*tree.Node) []*tree.Node {
	seen := make(map[*tree.Node]bool, len(nodes))
	for _, n := range nodes {
		seen[n] = true
	}
	out := make([]*tree.Node, 0, len(nodes))
	done := make(map[*tree.Node]bool, len(nodes))
	for _, n := range nodes {
		if done[n] {
			continue
		}
		done[n] = true
		covered := false
		for p := n.Parent(); p != nil; p = p.Parent() {
			if seen[p] {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, n)
		}
	}
	return out
}

// remove destroys the connections related to n, clears relative links
// elsewhere in the tree that point into n and detaches n.
func (e *Editor) remove(n *tree.Node, reason string) []error {
	var diags []error

	cls := connections.Classify(n)
	diags = append(diags, connections.Warnings(n, cls.Lost, reason)...)
	diags = append(diags, connections.Warnings(n, cls.Boundary, reason)...)
	if root := connections.HighestParentTask(n); root != nil {
		for _, c := range cls.Related() {
			root.DetachConnection(c)
		}
		// Edges between n itself and the rest of the tree.
		for _, c := range cls.Boundary {
			root.DetachConnection(c)
		}
	}

	gone := subtreeIDs(n)
	n.Top().Walk(func(holder *tree.Node) bool {
		if gone[holder.UUID()] {
			return false
		}
		for _, p := range holder.Links() {
			target := string(p.Value.(tree.RelativeLink))
			if !gone[target] {
				continue
			}
			holder.SetProperty(p.Ident, tree.RelativeLink(""))
			diags = append(diags, fmt.Errorf("%w: %s.%s pointed at %s", api.ErrDanglingLink, holder.Path(), p.Ident, target))
		}
		return true
	})

	n.Detach()
	return diags
}
