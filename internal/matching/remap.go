package matching

import (
	"fmt"

	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// FindConnectionCopy returns the connection in candidates that wires the same
// properties of the same objects as orig.
func FindConnectionCopy(orig *tree.Connection, candidates []*tree.Connection) *tree.Connection {
	for _, c := range candidates {
		if c.SameEndpoints(orig) {
			return c
		}
	}
	return nil
}

// UpdateConnection points the endpoints of dupConn at the counterparts, in
// dup, of the objects origConn connects in orig.
func UpdateConnection(origConn, dupConn *tree.Connection, orig, dup *tree.Node) error {
	src := orig.FindByUUID(origConn.SourceUUID())
	if src == nil {
		return &api.MatchingFailure{Object: origConn.SourceUUID(), Reason: "connection source not in original"}
	}
	tgt := orig.FindByUUID(origConn.TargetUUID())
	if tgt == nil {
		return &api.MatchingFailure{Object: origConn.TargetUUID(), Reason: "connection target not in original"}
	}

	srcCopy := FindEquivalent(dup, src)
	if srcCopy == nil {
		return &api.MatchingFailure{Object: src.Name(), Reason: "connection source has no counterpart"}
	}
	tgtCopy := FindEquivalent(dup, tgt)
	if tgtCopy == nil {
		return &api.MatchingFailure{Object: tgt.Name(), Reason: "connection target has no counterpart"}
	}

	dupConn.SetSourceUUID(srcCopy.UUID())
	dupConn.SetTargetUUID(tgtCopy.UUID())
	return nil
}

// MapPropertyConnections rewrites the connections stored on dup, which still
// name the objects of orig, so that they connect the counterparts in dup.
// Every failed repair is returned and skipped; the others proceed.
func MapPropertyConnections(orig, dup *tree.Node) []error {
	origConns := orig.Connections()
	dupConns := dup.Connections()
	if len(origConns) != len(dupConns) {
		return []error{&api.MatchingFailure{
			Object: orig.Name(),
			Reason: fmt.Sprintf("%d connections in original, %d in duplicate", len(origConns), len(dupConns)),
		}}
	}

	var failures []error
	for _, oc := range origConns {
		dc := FindConnectionCopy(oc, dupConns)
		if dc == nil {
			failures = append(failures, &api.MatchingFailure{Object: oc.String(), Reason: "connection has no copy"})
			continue
		}
		if err := UpdateConnection(oc, dc, orig, dup); err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}
