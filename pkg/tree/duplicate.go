package tree

// Copy returns a structurally identical duplicate of n with fresh UUIDs
// throughout. This is the duplicate used for clipboard and paste.
//
// Every duplicated node records the UUID of its source as Origin. Stored
// connections are duplicated verbatim, so their endpoints still name the
// source objects until they are remapped.
func (n *Node) Copy() *Node {
	dup := n.duplicate(false)
	dup.parent = nil
	return dup
}

// Clone returns a structurally identical duplicate of n that keeps every UUID,
// origin and execution state. It is a transient matching basis and must never
// be inserted into a live tree.
func (n *Node) Clone() *Node {
	dup := n.duplicate(true)
	dup.parent = nil
	return dup
}

func (n *Node) duplicate(keepIdentity bool) *Node {
	dup := &Node{
		kind:        n.kind,
		class:       n.class,
		name:        n.name,
		placeholder: n.placeholder,
		skipped:     n.skipped,
		state:       StateReady,
	}
	if keepIdentity {
		dup.uuid = n.uuid
		dup.origin = n.origin
		dup.state = n.State()
		dup.progress = n.Progress()
	} else {
		dup.uuid = newUUID()
		dup.origin = n.uuid
	}

	if props := n.Properties(); len(props) > 0 {
		dup.props = props
	}

	for _, c := range n.connections {
		var cc *Connection
		if keepIdentity {
			cc = c.Clone()
		} else {
			cc = c.Copy()
		}
		cc.owner = dup
		dup.connections = append(dup.connections, cc)
	}

	for _, child := range n.children {
		cd := child.duplicate(keepIdentity)
		cd.parent = dup
		dup.children = append(dup.children, cd)
	}
	return dup
}

// Reidentify gives n, its descendants and the connections stored on them
// fresh UUIDs. Connection endpoints and relative links that point inside the
// subtree are rewritten. The returned map translates old UUIDs to new ones.
func (n *Node) Reidentify() map[string]string {
	ids := make(map[string]string)
	nodes := append([]*Node{n}, n.Descendants()...)
	for _, node := range nodes {
		fresh := newUUID()
		ids[node.uuid] = fresh
		node.uuid = fresh
	}
	for _, node := range nodes {
		for _, p := range node.Links() {
			if id, ok := ids[string(p.Value.(RelativeLink))]; ok {
				node.SetProperty(p.Ident, RelativeLink(id))
			}
		}
		for _, c := range node.connections {
			c.uuid = newUUID()
			if id, ok := ids[c.sourceUUID]; ok {
				c.sourceUUID = id
			}
			if id, ok := ids[c.targetUUID]; ok {
				c.targetUUID = id
			}
		}
	}
	return ids
}
