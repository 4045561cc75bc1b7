package tree

import "fmt"

// Connection is a directed edge wiring a property of one component to a
// property of another. It is owned by the execution-root task of both
// endpoints, never by the endpoints themselves.
type Connection struct {
	uuid       string
	sourceUUID string
	sourceProp string
	targetUUID string
	targetProp string

	owner *Node
}

// NewConnection creates a detached connection with a fresh identity.
func NewConnection(sourceUUID, sourceProp, targetUUID, targetProp string) *Connection {
	return &Connection{
		uuid:       newUUID(),
		sourceUUID: sourceUUID,
		sourceProp: sourceProp,
		targetUUID: targetUUID,
		targetProp: targetProp,
	}
}

func (c *Connection) UUID() string           { return c.uuid }
func (c *Connection) SourceUUID() string     { return c.sourceUUID }
func (c *Connection) SourceProperty() string { return c.sourceProp }
func (c *Connection) TargetUUID() string     { return c.targetUUID }
func (c *Connection) TargetProperty() string { return c.targetProp }

// Owner returns the task the connection is stored on, or nil.
func (c *Connection) Owner() *Node { return c.owner }

func (c *Connection) SetUUID(id string)          { c.uuid = id }
func (c *Connection) SetSourceUUID(id string)    { c.sourceUUID = id }
func (c *Connection) SetTargetUUID(id string)    { c.targetUUID = id }
func (c *Connection) SetSourceProperty(p string) { c.sourceProp = p }
func (c *Connection) SetTargetProperty(p string) { c.targetProp = p }

// SameEndpoints reports whether c and other wire the same properties of the
// same objects.
func (c *Connection) SameEndpoints(other *Connection) bool {
	return c.sourceUUID == other.sourceUUID &&
		c.targetUUID == other.targetUUID &&
		c.sourceProp == other.sourceProp &&
		c.targetProp == other.targetProp
}

// Touches reports whether id is one of the endpoints.
func (c *Connection) Touches(id string) bool {
	return c.sourceUUID == id || c.targetUUID == id
}

// Copy returns a detached duplicate with a fresh identity and the same
// endpoint fields.
func (c *Connection) Copy() *Connection {
	return NewConnection(c.sourceUUID, c.sourceProp, c.targetUUID, c.targetProp)
}

// Clone returns a detached duplicate that keeps the connection identity.
func (c *Connection) Clone() *Connection {
	dup := c.Copy()
	dup.uuid = c.uuid
	return dup
}

// Rebind returns a fresh-identity copy whose endpoints are translated through
// ids. Endpoints missing from ids are kept.
func (c *Connection) Rebind(ids map[string]string) *Connection {
	dup := c.Copy()
	if id, ok := ids[c.sourceUUID]; ok {
		dup.sourceUUID = id
	}
	if id, ok := ids[c.targetUUID]; ok {
		dup.targetUUID = id
	}
	return dup
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", c.sourceUUID, c.sourceProp, c.targetUUID, c.targetProp)
}

// Connections returns the connections stored on n.
func (n *Node) Connections() []*Connection {
	out := make([]*Connection, len(n.connections))
	copy(out, n.connections)
	return out
}

// AttachConnection stores c on n. Only tasks store connections.
func (n *Node) AttachConnection(c *Connection) error {
	if n.kind != KindTask {
		return fmt.Errorf("%w: %s", ErrNotTask, n)
	}
	if c.owner != nil {
		c.owner.DetachConnection(c)
	}
	n.connections = append(n.connections, c)
	c.owner = n
	return nil
}

// DetachConnection removes c from n. It reports whether c was stored on n.
func (n *Node) DetachConnection(c *Connection) bool {
	for i, have := range n.connections {
		if have == c {
			n.connections = append(n.connections[:i], n.connections[i+1:]...)
			c.owner = nil
			return true
		}
	}
	return false
}

// DetachConnections removes and returns every connection stored on n.
func (n *Node) DetachConnections() []*Connection {
	out := n.connections
	n.connections = nil
	for _, c := range out {
		c.owner = nil
	}
	return out
}
