package matching

import (
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// UpdateRelativeObjectLinks retargets the relative links inside dup that point
// into orig so they point at the corresponding objects of dup. Links whose
// target lies outside orig are left unchanged.
func UpdateRelativeObjectLinks(orig, dup *tree.Node) []error {
	// Matching runs against an untouched snapshot of dup; dup itself is
	// rewritten as links are resolved.
	snapshot := dup.Clone()

	var failures []error
	for _, obj := range append(orig.Descendants(), orig) {
		for _, p := range obj.Links() {
			target := string(p.Value.(tree.RelativeLink))
			if target == "" {
				continue
			}
			origTarget := orig.FindByUUID(target)
			if origTarget == nil {
				continue
			}

			if err := mapLink(dup, snapshot, obj, origTarget, p.Ident); err != nil {
				failures = append(failures, err)
			}
		}
	}
	return failures
}

func mapLink(dup, snapshot, obj, origTarget *tree.Node, ident string) error {
	targetSnap := FindEquivalent(snapshot, origTarget)
	if targetSnap == nil {
		return &api.MatchingFailure{Object: origTarget.Name(), Reason: "link target has no counterpart"}
	}
	objSnap := FindEquivalent(snapshot, obj)
	if objSnap == nil {
		return &api.MatchingFailure{Object: obj.Name(), Reason: "link holder has no counterpart"}
	}

	objCopy := dup.FindByUUID(objSnap.UUID())
	targetCopy := dup.FindByUUID(targetSnap.UUID())
	if objCopy == nil || targetCopy == nil {
		return &api.MatchingFailure{Object: obj.Name(), Reason: "counterpart vanished from duplicate"}
	}

	objCopy.SetProperty(ident, tree.RelativeLink(targetCopy.UUID()))
	return nil
}
