package proctree

import (
	"errors"
	"fmt"

	"github.com/petrijr/proctree/pkg/tree"
)

// ErrUnknownPath is returned by Build when a path does not name a component
// below the task being built.
var ErrUnknownPath = errors.New("proctree: unknown component path")

// TaskBuilder provides a fluent API for defining tasks:
//
//	task := proctree.NewTask("Compute").
//	    Calculator(proctree.ClassConstant, "two", proctree.Prop("value", 2)).
//	    Calculator(proctree.ClassSum, "sum").
//	    Connect("two", "output", "sum", "a")
//
//	if err := task.AddTo(group); err != nil {
//	    log.Fatal(err)
//	}
//
// Paths are slash separated child names relative to the task being built, so
// nested tasks can be wired from the outside ("prepare/load").
type TaskBuilder struct {
	root  *tree.Node
	conns []pendingConnection
	links []pendingLink
	skips []string
	err   error
}

type pendingConnection struct {
	srcPath, srcProp string
	tgtPath, tgtProp string
}

type pendingLink struct {
	path, ident, target string
}

// NewTask creates a builder for a task of the default class.
func NewTask(name string) *TaskBuilder {
	return NewTaskOfClass(tree.DefaultTaskClass, name)
}

// NewTaskOfClass creates a builder for a task of a registered task class.
func NewTaskOfClass(class, name string) *TaskBuilder {
	if name == "" {
		panic("proctree: task name must not be empty")
	}
	return &TaskBuilder{root: tree.NewTaskOfClass(class, name)}
}

// Prop builds a property for Calculator.
func Prop(ident string, value any) Property {
	return Property{Ident: ident, Value: value}
}

// Name returns the task name.
func (b *TaskBuilder) Name() string {
	return b.root.Name()
}

// Calculator appends a calculator with the given initial properties.
func (b *TaskBuilder) Calculator(class, name string, props ...Property) *TaskBuilder {
	if name == "" {
		panic("proctree: calculator name must not be empty")
	}
	c := tree.NewCalculator(class, name)
	for _, p := range props {
		c.SetProperty(p.Ident, p.Value)
	}
	b.append(c)
	return b
}

// Task appends the task built by sub. Connections defined on sub are moved
// to the task being built, with their paths prefixed by sub's name.
func (b *TaskBuilder) Task(sub *TaskBuilder) *TaskBuilder {
	if sub.err != nil {
		b.fail(sub.err)
		return b
	}
	prefix := sub.root.Name() + "/"
	for _, pc := range sub.conns {
		b.conns = append(b.conns, pendingConnection{
			srcPath: prefix + pc.srcPath, srcProp: pc.srcProp,
			tgtPath: prefix + pc.tgtPath, tgtProp: pc.tgtProp,
		})
	}
	for _, pl := range sub.links {
		b.links = append(b.links, pendingLink{path: prefix + pl.path, ident: pl.ident, target: prefix + pl.target})
	}
	for _, p := range sub.skips {
		b.skips = append(b.skips, prefix+p)
	}
	b.append(sub.root)
	return b
}

// Connect copies srcPath.srcProp onto tgtPath.tgtProp whenever the target
// calculator runs.
func (b *TaskBuilder) Connect(srcPath, srcProp, tgtPath, tgtProp string) *TaskBuilder {
	b.conns = append(b.conns, pendingConnection{srcPath: srcPath, srcProp: srcProp, tgtPath: tgtPath, tgtProp: tgtProp})
	return b
}

// Link stores a relative link to target under ident on the component at path.
// An empty path names the task itself.
func (b *TaskBuilder) Link(path, ident, target string) *TaskBuilder {
	b.links = append(b.links, pendingLink{path: path, ident: ident, target: target})
	return b
}

// Skip marks the component at path as skipped.
func (b *TaskBuilder) Skip(path string) *TaskBuilder {
	b.skips = append(b.skips, path)
	return b
}

// Build resolves paths and returns the task. A builder must not be reused
// after Build.
func (b *TaskBuilder) Build() (*Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, pc := range b.conns {
		src, err := b.resolve(pc.srcPath)
		if err != nil {
			return nil, err
		}
		tgt, err := b.resolve(pc.tgtPath)
		if err != nil {
			return nil, err
		}
		c := tree.NewConnection(src.UUID(), pc.srcProp, tgt.UUID(), pc.tgtProp)
		if err := b.root.AttachConnection(c); err != nil {
			return nil, err
		}
	}
	for _, pl := range b.links {
		n, err := b.resolve(pl.path)
		if err != nil {
			return nil, err
		}
		target, err := b.resolve(pl.target)
		if err != nil {
			return nil, err
		}
		n.SetProperty(pl.ident, tree.RelativeLink(target.UUID()))
	}
	for _, p := range b.skips {
		n, err := b.resolve(p)
		if err != nil {
			return nil, err
		}
		n.SetSkipped(true)
	}
	return b.root, nil
}

// MustBuild is like Build but panics on error.
// Useful for fixtures and initialization in main().
func (b *TaskBuilder) MustBuild() *Node {
	task, err := b.Build()
	if err != nil {
		panic(err)
	}
	return task
}

// AddTo builds the task and appends it to group.
func (b *TaskBuilder) AddTo(group *Node) error {
	task, err := b.Build()
	if err != nil {
		return err
	}
	return group.AppendChild(task)
}

func (b *TaskBuilder) append(child *tree.Node) {
	if b.err != nil {
		return
	}
	if err := b.root.AppendChild(child); err != nil {
		b.fail(fmt.Errorf("add %q to %q: %w", child.Name(), b.root.Name(), err))
	}
}

func (b *TaskBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *TaskBuilder) resolve(path string) (*tree.Node, error) {
	n := b.root.FindPath(path)
	if n == nil {
		return nil, fmt.Errorf("%w: %q in %q", ErrUnknownPath, path, b.root.Name())
	}
	return n, nil
}
