package tree

import "reflect"

// RelativeLink is a property value holding the UUID of another node in the
// same tree. It is a lookup reference, never ownership.
type RelativeLink string

// Property is a named value on a node. Values must be gob-encodable.
type Property struct {
	Ident string
	Value any
}

// Properties returns a copy of the ordered property list.
func (n *Node) Properties() []Property {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Property, len(n.props))
	copy(out, n.props)
	return out
}

// Property returns the value stored under ident.
func (n *Node) Property(ident string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, p := range n.props {
		if p.Ident == ident {
			return p.Value, true
		}
	}
	return nil, false
}

// HasProperty reports whether ident is defined on n.
func (n *Node) HasProperty(ident string) bool {
	_, ok := n.Property(ident)
	return ok
}

// SetProperty defines or overwrites a property, keeping definition order.
func (n *Node) SetProperty(ident string, value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.props {
		if n.props[i].Ident == ident {
			n.props[i].Value = value
			return
		}
	}
	n.props = append(n.props, Property{Ident: ident, Value: value})
}

// Links returns the properties of n that hold a RelativeLink.
func (n *Node) Links() []Property {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var out []Property
	for _, p := range n.props {
		if _, ok := p.Value.(RelativeLink); ok {
			out = append(out, p)
		}
	}
	return out
}

// ValuesEqual compares two property values.
func ValuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
