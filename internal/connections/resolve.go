// Package connections resolves the execution root that stores a component's
// property connections and classifies those connections relative to a
// subtree.
package connections

import "github.com/petrijr/proctree/pkg/tree"

// HighestParentTask returns the execution-root task of n: the outermost task
// in the unbroken chain of tasks above n. Calculators resolve through their
// enclosing task. It returns nil when n has no task ancestor.
func HighestParentTask(n *tree.Node) *tree.Node {
	cur := n
	for cur != nil && !cur.IsTask() {
		if cur.IsGroup() {
			return nil
		}
		cur = cur.Parent()
	}
	if cur == nil {
		return nil
	}
	for {
		p := cur.Parent()
		if p == nil || !p.IsTask() {
			return cur
		}
		cur = p
	}
}

// IsRootTask reports whether n is a task that owns its connections itself.
func IsRootTask(n *tree.Node) bool {
	return n != nil && n.IsTask() && HighestParentTask(n) == n
}

// ParentTask returns the nearest strict task ancestor of n, or nil.
func ParentTask(n *tree.Node) *tree.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.IsTask() {
			return p
		}
	}
	return nil
}
