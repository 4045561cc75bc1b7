package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/petrijr/proctree/internal/connections"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

var (
	ErrDuplicateConnection = errors.New("connection already exists")
	ErrCrossRoot           = errors.New("endpoints belong to different execution roots")
)

// AddTask appends a new task of class to parent. The name is made unique
// among the new siblings.
func (e *Editor) AddTask(ctx context.Context, parent *tree.Node, class, name string) (*api.EditResult, error) {
	if class == "" {
		class = tree.DefaultTaskClass
	}
	return e.add(ctx, parent, tree.KindTask, class, name, nil)
}

// AddCalculator appends a new calculator of class, initialised with props,
// to parent.
func (e *Editor) AddCalculator(ctx context.Context, parent *tree.Node, class, name string, props []tree.Property) (*api.EditResult, error) {
	return e.add(ctx, parent, tree.KindCalculator, class, name, props)
}

func (e *Editor) add(ctx context.Context, parent *tree.Node, kind tree.Kind, class, name string, props []tree.Property) (*api.EditResult, error) {
	if err := requireReady("add", parent); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, api.Invalid("add", "", tree.ErrEmptyName)
	}
	if e.factory != nil {
		got, ok := e.factory.Lookup(class)
		if !ok {
			return nil, api.Invalid("add", name, fmt.Errorf("%w: %s", api.ErrUnknownClass, class))
		}
		if got != kind {
			return nil, api.Invalid("add", name, fmt.Errorf("%w: %s is a %s", api.ErrInvalidTarget, class, got))
		}
	}

	var n *tree.Node
	if kind == tree.KindTask {
		n = tree.NewTaskOfClass(class, name)
	} else {
		n = tree.NewCalculator(class, name)
	}
	if !parent.Accepts(n) {
		return nil, api.Invalid("add", name, fmt.Errorf("%w: %s cannot hold %s", api.ErrInvalidTarget, parent, n))
	}
	for _, p := range props {
		n.SetProperty(p.Ident, p.Value)
	}

	cmd := e.begin(parent, "Add "+kind.String())
	res := &api.EditResult{Node: n}
	defer e.commit(ctx, cmd, res)

	if err := n.SetName(parent.UniqueChildName(name)); err != nil {
		return res, err
	}
	if err := parent.AppendChild(n); err != nil {
		return res, err
	}
	return res, nil
}

// Connect wires srcProp of src to tgtProp of tgt. The connection is stored on
// the execution root both endpoints share.
func (e *Editor) Connect(ctx context.Context, src *tree.Node, srcProp string, tgt *tree.Node, tgtProp string) (*tree.Connection, error) {
	for _, n := range []*tree.Node{src, tgt} {
		if err := requireReady("connect", n); err != nil {
			return nil, err
		}
		if n.IsGroup() {
			return nil, api.Invalid("connect", n.Name(), api.ErrInvalidTarget)
		}
	}
	if srcProp == "" || tgtProp == "" {
		return nil, api.Invalid("connect", src.Name(), errors.New("property names are required"))
	}
	if src == tgt && srcProp == tgtProp {
		return nil, api.Invalid("connect", src.Name(), errors.New("property connected to itself"))
	}

	root := connections.HighestParentTask(src)
	if root == nil || root != connections.HighestParentTask(tgt) {
		return nil, api.Invalid("connect", src.Name(), ErrCrossRoot)
	}
	c := tree.NewConnection(src.UUID(), srcProp, tgt.UUID(), tgtProp)
	for _, have := range root.Connections() {
		if have.SameEndpoints(c) {
			return nil, api.Invalid("connect", src.Name(), ErrDuplicateConnection)
		}
	}

	cmd := e.begin(root, "Connect")
	defer e.commit(ctx, cmd, &api.EditResult{Node: root})

	if err := root.AttachConnection(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Disconnect destroys c.
func (e *Editor) Disconnect(ctx context.Context, c *tree.Connection) error {
	if c == nil || c.Owner() == nil {
		return api.Invalid("disconnect", "", api.ErrInvalidTarget)
	}
	owner := c.Owner()
	if err := requireReady("disconnect", owner); err != nil {
		return err
	}

	cmd := e.begin(owner, "Disconnect")
	defer e.commit(ctx, cmd, &api.EditResult{Node: owner})

	owner.DetachConnection(c)
	return nil
}

// SetLink stores a relative link to target in the ident property of holder.
// A nil target clears the link.
func (e *Editor) SetLink(ctx context.Context, holder *tree.Node, ident string, target *tree.Node) error {
	if err := requireReady("link", holder); err != nil {
		return err
	}
	if ident == "" {
		return api.Invalid("link", holder.Name(), errors.New("property name is required"))
	}
	value := tree.RelativeLink("")
	if target != nil {
		if target.Top() != holder.Top() {
			return api.Invalid("link", holder.Name(), fmt.Errorf("%w: link target in another tree", api.ErrInvalidTarget))
		}
		value = tree.RelativeLink(target.UUID())
	}

	cmd := e.begin(holder, "Link")
	defer e.commit(ctx, cmd, &api.EditResult{Node: holder})

	holder.SetProperty(ident, value)
	return nil
}

// SetProperty sets a plain property value on n.
func (e *Editor) SetProperty(ctx context.Context, n *tree.Node, ident string, value any) error {
	if err := requireReady("set", n); err != nil {
		return err
	}
	if ident == "" {
		return api.Invalid("set", n.Name(), errors.New("property name is required"))
	}

	cmd := e.begin(n, "Set "+ident)
	defer e.commit(ctx, cmd, &api.EditResult{Node: n})

	n.SetProperty(ident, value)
	return nil
}

// Rename gives n a new name, unique among its siblings.
func (e *Editor) Rename(ctx context.Context, n *tree.Node, name string) error {
	if err := requireReady("rename", n); err != nil {
		return err
	}
	if name == "" {
		return api.Invalid("rename", n.Name(), tree.ErrEmptyName)
	}
	if p := n.Parent(); p != nil {
		if other := p.ChildByName(name); other != nil && other != n {
			return api.Invalid("rename", n.Name(), tree.ErrDuplicateName)
		}
	}

	cmd := e.begin(n, "Rename")
	defer e.commit(ctx, cmd, &api.EditResult{Node: n})

	return n.SetName(name)
}

// Skip sets or clears the skip flag of n. Skipped components stay editable;
// skipped tasks are not eligible to run.
func (e *Editor) Skip(ctx context.Context, n *tree.Node, skip bool) error {
	if err := requireReady("skip", n); err != nil {
		return err
	}
	if n.IsGroup() {
		return api.Invalid("skip", n.Name(), api.ErrInvalidTarget)
	}

	cmd := e.begin(n, "Skip")
	defer e.commit(ctx, cmd, &api.EditResult{Node: n})

	n.SetSkipped(skip)
	return nil
}
