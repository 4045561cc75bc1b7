// Package matching recovers the correspondence between an original subtree
// and a duplicate of it, and repairs the connections and relative links the
// duplicate carried along.
package matching

import "github.com/petrijr/proctree/pkg/tree"

// FindEquivalent searches searchRoot for the structural counterpart of orig.
//
// Candidates are visited in pre-order with searchRoot itself last. A
// candidate matches when name and class are equal, every property of orig is
// defined on it with an equal value and, if both have parents, the parents
// agree on class, direct child count and total descendant count.
//
// Among the matches, one whose UUID or origin equals orig's UUID wins; the
// first match in traversal order is the fallback. It returns nil when there is
// no match.
func FindEquivalent(searchRoot, orig *tree.Node) *tree.Node {
	if searchRoot == nil || orig == nil {
		return nil
	}

	var first *tree.Node
	consider := func(cand *tree.Node) bool {
		if !equivalent(cand, orig) {
			return false
		}
		if cand.UUID() == orig.UUID() || cand.Origin() == orig.UUID() {
			first = cand
			return true
		}
		if first == nil {
			first = cand
		}
		return false
	}

	done := false
	searchRoot.Walk(func(cand *tree.Node) bool {
		if done {
			return false
		}
		done = consider(cand)
		return !done
	})
	if !done {
		consider(searchRoot)
	}
	return first
}

func equivalent(cand, orig *tree.Node) bool {
	if cand.Name() != orig.Name() || cand.Class() != orig.Class() {
		return false
	}
	for _, p := range orig.Properties() {
		v, ok := cand.Property(p.Ident)
		if !ok || !tree.ValuesEqual(v, p.Value) {
			return false
		}
	}

	op, cp := orig.Parent(), cand.Parent()
	if op == nil || cp == nil {
		return true
	}
	return op.Class() == cp.Class() &&
		op.ChildCount() == cp.ChildCount() &&
		op.DescendantCount() == cp.DescendantCount()
}
