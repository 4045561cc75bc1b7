package connections

import (
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// Warning describes c as a lost connection. Endpoints are resolved inside
// scope's tree; unresolved endpoints are reported by UUID.
func Warning(scope *tree.Node, c *tree.Connection, reason string) *api.StructuralIntegrityWarning {
	w := &api.StructuralIntegrityWarning{
		Connection:     c.UUID(),
		Source:         c.SourceUUID(),
		SourceProperty: c.SourceProperty(),
		Target:         c.TargetUUID(),
		TargetProperty: c.TargetProperty(),
		Reason:         reason,
	}
	if scope == nil {
		return w
	}
	top := scope.Top()
	if src := top.FindByUUID(c.SourceUUID()); src != nil {
		w.Source = src.Name()
		if pt := ParentTask(src); pt != nil {
			w.SourceTask = pt.Name()
		}
	}
	if tgt := top.FindByUUID(c.TargetUUID()); tgt != nil {
		w.Target = tgt.Name()
		if pt := ParentTask(tgt); pt != nil {
			w.TargetTask = pt.Name()
		}
	}
	return w
}

// Warnings describes every connection in lost.
func Warnings(scope *tree.Node, lost []*tree.Connection, reason string) []error {
	out := make([]error, 0, len(lost))
	for _, c := range lost {
		out = append(out, Warning(scope, c, reason))
	}
	return out
}
