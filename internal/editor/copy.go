package editor

import (
	"context"
	"fmt"

	"github.com/petrijr/proctree/internal/connections"
	"github.com/petrijr/proctree/internal/matching"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// duplication is a new-identity duplicate of a component together with the
// connections that travel with it.
type duplication struct {
	node     *tree.Node
	conns    []*tree.Connection
	lost     []*tree.Connection
	failures []error
}

// duplicate copies node and repairs the connections and relative links of the
// copy so they refer to the copied objects. Connections are returned
// detached from the copy.
func (e *Editor) duplicate(node *tree.Node) duplication {
	var d duplication
	d.node = node.Copy()

	switch {
	case node.IsCalculator():
		d.lost = connections.Lost(node)

	case connections.IsRootTask(node):
		// A root task stores its connections itself; they were copied along.
		d.failures = append(d.failures, matching.MapPropertyConnections(node, d.node)...)

	default:
		// A nested task stores nothing. Its internal connections are carried
		// on the copy and on an identity-preserving clone of the original,
		// which serves as the matching basis.
		cls := connections.Classify(node)
		basis := node.Clone()
		for _, c := range cls.Internal {
			_ = basis.AttachConnection(c.Clone())
			_ = d.node.AttachConnection(c.Copy())
		}
		d.failures = append(d.failures, matching.MapPropertyConnections(basis, d.node)...)
		d.lost = cls.Lost
	}

	d.failures = append(d.failures, matching.UpdateRelativeObjectLinks(node, d.node)...)
	d.conns = d.node.DetachConnections()
	return d
}

// payload serializes a duplication.
func (e *Editor) payload(d duplication) (api.Payload, error) {
	comp, err := e.ser.Snapshot(d.node)
	if err != nil {
		return api.Payload{}, fmt.Errorf("snapshot %q: %w", d.node.Name(), err)
	}
	p := api.Payload{Format: api.ClipboardFormat, Component: comp}
	for _, c := range d.conns {
		data, err := e.ser.SnapshotConnection(c)
		if err != nil {
			return api.Payload{}, fmt.Errorf("snapshot connection %s: %w", c, err)
		}
		p.EmbeddedConnections = append(p.EmbeddedConnections, data)
	}
	return p, nil
}

// Copy puts a new-identity duplicate of node on the clipboard. Connections
// that escape node are reported and stay untouched on the original.
func (e *Editor) Copy(ctx context.Context, node *tree.Node) (*api.EditResult, error) {
	if err := e.copyPreconditions("copy", node); err != nil {
		return nil, err
	}

	d := e.duplicate(node)
	if err := e.toClipboard(ctx, d); err != nil {
		return nil, err
	}

	res := &api.EditResult{Node: node}
	res.Diagnostics = append(res.Diagnostics, connections.Warnings(node, d.lost, "not copied")...)
	res.Diagnostics = append(res.Diagnostics, d.failures...)
	e.report(ctx, "Copy", res.Diagnostics)
	return res, nil
}

func (e *Editor) copyPreconditions(op string, node *tree.Node) error {
	if err := requireReady(op, node); err != nil {
		return err
	}
	if node.IsGroup() {
		return api.Invalid(op, node.Name(), api.ErrInvalidTarget)
	}
	return nil
}

func (e *Editor) toClipboard(ctx context.Context, d duplication) error {
	p, err := e.payload(d)
	if err != nil {
		return err
	}
	if err := e.clipboard.Set(ctx, p); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	return nil
}

// CanPaste reports whether the clipboard holds content that can be pasted
// into target: tasks go into groups and tasks, calculators into tasks.
func (e *Editor) CanPaste(ctx context.Context, target *tree.Node) bool {
	if target == nil || target.IsCalculator() || !target.Ready() {
		return false
	}
	p, ok, err := e.clipboard.Get(ctx)
	if err != nil || !ok || p.Format != api.ClipboardFormat {
		return false
	}
	if !e.ser.CanRestoreAs(p.Component, tree.KindTask, e.factory) &&
		!(target.IsTask() && e.ser.CanRestoreAs(p.Component, tree.KindCalculator, e.factory)) {
		return false
	}
	r, err := e.restore(p)
	return err == nil && pasteTarget("paste", target, r.node) == nil
}

// Paste inserts the clipboard content as the last child of target. The
// pasted subtree gets fresh UUIDs, so one payload can be pasted repeatedly.
func (e *Editor) Paste(ctx context.Context, target *tree.Node) (*api.EditResult, error) {
	p, ok, err := e.clipboard.Get(ctx)
	if err != nil {
		return nil, &api.InvalidClipboardData{Reason: "read clipboard", Err: err}
	}
	if !ok {
		return nil, &api.InvalidClipboardData{Reason: "clipboard is empty"}
	}
	return e.pasteInto(ctx, "Paste", p, target, -1)
}

// Clone duplicates node and pastes the duplicate right after it. The
// clipboard is left alone.
func (e *Editor) Clone(ctx context.Context, node *tree.Node) (*api.EditResult, error) {
	if err := e.copyPreconditions("clone", node); err != nil {
		return nil, err
	}
	if node.Parent() == nil {
		return nil, api.Invalid("clone", node.Name(), api.ErrInvalidTarget)
	}

	d := e.duplicate(node)
	p, err := e.payload(d)
	if err != nil {
		return nil, err
	}
	res, err := e.pasteInto(ctx, "Clone", p, node.Parent(), node.Row()+1)
	if err != nil {
		return nil, err
	}
	pre := append(connections.Warnings(node, d.lost, "not cloned"), d.failures...)
	e.report(ctx, "Clone", pre)
	res.Diagnostics = append(pre, res.Diagnostics...)
	return res, nil
}

// restored is a payload turned back into a detached subtree.
type restored struct {
	node  *tree.Node
	conns []*tree.Connection
}

func (e *Editor) restore(p api.Payload) (restored, error) {
	var r restored
	if p.Format != api.ClipboardFormat {
		return r, &api.InvalidClipboardData{Reason: fmt.Sprintf("unsupported format %q", p.Format)}
	}
	if len(p.Component) == 0 {
		return r, &api.InvalidClipboardData{Reason: "no component"}
	}
	node, err := e.ser.Restore(p.Component, e.factory)
	if err != nil {
		return r, &api.InvalidClipboardData{Reason: "restore component", Err: err}
	}
	if node.IsPlaceholder() {
		return r, &api.InvalidClipboardData{Reason: fmt.Sprintf("unknown class %q", node.Class())}
	}
	if node.IsGroup() {
		return r, &api.InvalidClipboardData{Reason: "process groups cannot be pasted"}
	}
	if node.HasPlaceholderDescendants() {
		return r, &api.InvalidClipboardData{Reason: fmt.Sprintf("unknown component classes below %q", node.Name())}
	}
	r.node = node

	for i, data := range p.EmbeddedConnections {
		c, err := e.ser.RestoreConnection(data)
		if err != nil {
			return restored{}, &api.InvalidClipboardData{Reason: fmt.Sprintf("restore connection %d", i), Err: err}
		}
		r.conns = append(r.conns, c)
	}

	// Connections never stay nested below the execution root.
	for _, n := range append([]*tree.Node{node}, node.Descendants()...) {
		if n.IsTask() {
			r.conns = append(r.conns, n.DetachConnections()...)
		}
	}
	return r, nil
}

func pasteTarget(op string, target, node *tree.Node) error {
	switch {
	case target == nil:
		return api.Invalid(op, "", api.ErrInvalidTarget)
	case target.IsCalculator():
		return api.Invalid(op, target.Name(), fmt.Errorf("%w: calculators hold no pasted components", api.ErrInvalidTarget))
	case target.IsGroup() && !node.IsTask():
		return api.Invalid(op, target.Name(), fmt.Errorf("%w: only tasks can be pasted into a process group", api.ErrInvalidTarget))
	case !target.Ready():
		return api.Invalid(op, target.Name(), api.ErrNotReady)
	case !target.Accepts(node):
		return api.Invalid(op, target.Name(), api.ErrInvalidTarget)
	}
	return nil
}

// pasteInto restores p and inserts it into target at index at (append when
// negative). Embedded connections are re-homed on the new execution root.
func (e *Editor) pasteInto(ctx context.Context, label string, p api.Payload, target *tree.Node, at int) (*api.EditResult, error) {
	r, err := e.restore(p)
	if err != nil {
		return nil, err
	}
	if err := pasteTarget(label, target, r.node); err != nil {
		return nil, err
	}

	ids := r.node.Reidentify()
	if err := r.node.SetName(target.UniqueChildName(r.node.Name())); err != nil {
		return nil, api.Invalid(label, r.node.Name(), err)
	}

	cmd := e.begin(target, label)
	res := &api.EditResult{}
	defer e.commit(ctx, cmd, res)

	if err := target.InsertChild(r.node, at); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	res.Node = r.node

	root := connections.HighestParentTask(r.node)
	inRoot := subtreeIDs(root)
	for _, c := range r.conns {
		nc := c.Rebind(ids)
		if !inRoot[nc.SourceUUID()] || !inRoot[nc.TargetUUID()] {
			res.Diagnostics = append(res.Diagnostics, connections.Warning(r.node, nc, "endpoint not pasted"))
			continue
		}
		if err := root.AttachConnection(nc); err != nil {
			return res, fmt.Errorf("%s: %w", label, err)
		}
	}
	return res, nil
}
