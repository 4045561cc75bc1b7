package tree

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Kind is the closed set of node variants a process tree is built from.
type Kind int

const (
	// KindGroup is the top-level process collection. It holds root tasks only.
	KindGroup Kind = iota
	// KindTask is a container process node.
	KindTask
	// KindCalculator is a computational unit inside a task.
	KindCalculator
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "Group"
	case KindTask:
		return "Task"
	case KindCalculator:
		return "Calculator"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DefaultTaskClass is the class name of plain tasks.
const DefaultTaskClass = "Task"

// Node is a process component or the process group holding them.
//
// Structure (parent, children, properties, connections) is not synchronized
// and must only be mutated by one editor at a time. State and progress may be
// read and written concurrently by the executor.
type Node struct {
	kind        Kind
	class       string
	name        string
	uuid        string
	origin      string
	placeholder bool
	skipped     bool

	parent      *Node
	children    []*Node
	connections []*Connection

	// mu guards the fields below. Calculators write properties on executor
	// goroutines while editors and observers read them.
	mu       sync.RWMutex
	props    []Property
	state    State
	progress int
}

// NewGroup creates an empty process group.
func NewGroup(name string) *Node {
	return newNode(KindGroup, "ProcessGroup", name)
}

// NewTask creates a task of the default task class.
func NewTask(name string) *Node {
	return newNode(KindTask, DefaultTaskClass, name)
}

// NewTaskOfClass creates a task of a specific registered class.
func NewTaskOfClass(class, name string) *Node {
	return newNode(KindTask, class, name)
}

// NewCalculator creates a calculator of the given class.
func NewCalculator(class, name string) *Node {
	return newNode(KindCalculator, class, name)
}

// NewPlaceholder creates a stand-in for a component whose class could not be
// resolved. Placeholders are never eligible for editing or execution.
func NewPlaceholder(kind Kind, class, name string) *Node {
	n := newNode(kind, class, name)
	n.placeholder = true
	return n
}

func newNode(kind Kind, class, name string) *Node {
	return &Node{
		kind:  kind,
		class: class,
		name:  name,
		uuid:  newUUID(),
		state: StateReady,
	}
}

func newUUID() string {
	return uuid.New().String()
}

func (n *Node) Kind() Kind           { return n.kind }
func (n *Node) IsGroup() bool        { return n.kind == KindGroup }
func (n *Node) IsTask() bool         { return n.kind == KindTask }
func (n *Node) IsCalculator() bool   { return n.kind == KindCalculator }
func (n *Node) Class() string        { return n.class }
func (n *Node) Name() string         { return n.name }
func (n *Node) UUID() string         { return n.uuid }
func (n *Node) Parent() *Node        { return n.parent }
func (n *Node) IsPlaceholder() bool  { return n.placeholder }
func (n *Node) Skipped() bool        { return n.skipped }
func (n *Node) SetSkipped(skip bool) { n.skipped = skip }

// Origin returns the UUID of the node this one was duplicated from, or "" for
// nodes that were created directly.
func (n *Node) Origin() string { return n.origin }

// SetUUID overrides the node identity. It is meant for restoring snapshots.
func (n *Node) SetUUID(id string) { n.uuid = id }

// SetOrigin records the node this one was duplicated from.
func (n *Node) SetOrigin(id string) { n.origin = id }

// SetName renames the node. The name must be unique among its siblings.
func (n *Node) SetName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if n.parent != nil {
		if other := n.parent.ChildByName(name); other != nil && other != n {
			return fmt.Errorf("%w: %q in %q", ErrDuplicateName, name, n.parent.name)
		}
	}
	n.name = name
	return nil
}

// String returns a short human readable description.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %q (%s)", n.kind, n.name, n.class)
}

// Accepts reports whether child may be placed in one of n's child slots.
func (n *Node) Accepts(child *Node) bool {
	if child == nil || child == n {
		return false
	}
	switch n.kind {
	case KindGroup:
		return child.kind == KindTask
	case KindTask:
		return child.kind == KindTask || child.kind == KindCalculator
	case KindCalculator:
		return child.kind == KindCalculator
	}
	return false
}

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the child at index i or nil.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// ChildByName returns the direct child with the given name.
func (n *Node) ChildByName(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// IndexOf returns the position of child in n, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Row returns the position of n within its parent, or -1 for detached nodes.
func (n *Node) Row() int {
	if n.parent == nil {
		return -1
	}
	return n.parent.IndexOf(n)
}

// AppendChild adds child as the last child of n.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertChild(child, len(n.children))
}

// InsertChild places child at index at (clamped to the child range).
// The child must be detached and its name must not collide with a sibling.
func (n *Node) InsertChild(child *Node, at int) error {
	if child == nil {
		return ErrNilNode
	}
	if child.parent != nil {
		return fmt.Errorf("%w: %s", ErrAttached, child)
	}
	if !n.Accepts(child) {
		return fmt.Errorf("%w: %s cannot hold %s", ErrSlotMismatch, n, child)
	}
	if child == n || child.IsAncestorOf(n) {
		return fmt.Errorf("%w: %s", ErrCycle, child)
	}
	if n.ChildByName(child.name) != nil {
		return fmt.Errorf("%w: %q in %q", ErrDuplicateName, child.name, n.name)
	}
	if at < 0 || at > len(n.children) {
		at = len(n.children)
	}

	n.children = append(n.children, nil)
	copy(n.children[at+1:], n.children[at:])
	n.children[at] = child
	child.parent = n
	return nil
}

// RemoveChild detaches child from n. It reports whether child was found.
func (n *Node) RemoveChild(child *Node) bool {
	i := n.IndexOf(child)
	if i < 0 {
		return false
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
	return true
}

// Detach removes n from its parent, if any.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	if other == nil {
		return false
	}
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Top returns the topmost ancestor of n (n itself when detached).
func (n *Node) Top() *Node {
	top := n
	for top.parent != nil {
		top = top.parent
	}
	return top
}

// Walk visits n's strict descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	for _, c := range n.children {
		if fn(c) {
			c.Walk(fn)
		}
	}
}

// Descendants returns all strict descendants of n in pre-order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		out = append(out, c)
		return true
	})
	return out
}

// DescendantCount returns the number of strict descendants of n.
func (n *Node) DescendantCount() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// FindByUUID searches n and its descendants for the node with the given UUID.
func (n *Node) FindByUUID(id string) *Node {
	if id == "" {
		return nil
	}
	if n.uuid == id {
		return n
	}
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.uuid == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindPath resolves a slash separated list of child names below n.
func (n *Node) FindPath(path string) *Node {
	path = strings.Trim(path, "/")
	if path == "" {
		return n
	}
	cur := n
	for _, part := range strings.Split(path, "/") {
		cur = cur.ChildByName(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Path returns the slash separated names from the top of the tree to n,
// excluding the top node itself.
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// UniqueChildName returns base if no child of n is called base, otherwise the
// first free name of the form "base[N]".
func (n *Node) UniqueChildName(base string) string {
	if n.ChildByName(base) == nil {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s[%d]", base, i)
		if n.ChildByName(candidate) == nil {
			return candidate
		}
	}
}

// HasPlaceholderAncestor reports whether any ancestor of n is a placeholder.
func (n *Node) HasPlaceholderAncestor() bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.placeholder {
			return true
		}
	}
	return false
}

// HasPlaceholderDescendants reports whether any descendant is a placeholder.
func (n *Node) HasPlaceholderDescendants() bool {
	found := false
	n.Walk(func(c *Node) bool {
		if c.placeholder {
			found = true
		}
		return !found
	})
	return found
}

// Ready reports whether n may be edited: it is no placeholder, has no
// placeholder ancestor and its topmost task is not busy executing.
func (n *Node) Ready() bool {
	if n.placeholder || n.HasPlaceholderAncestor() {
		return false
	}
	var top *Node
	for cur := n; cur != nil; cur = cur.parent {
		if cur.kind == KindTask {
			top = cur
		}
	}
	return top == nil || !top.State().Busy()
}
