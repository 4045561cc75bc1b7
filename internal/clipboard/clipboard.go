// Package clipboard provides api.Clipboard backends.
package clipboard

import (
	"bytes"
	"context"
	"encoding/gob"
	"slices"
	"sync"

	"github.com/petrijr/proctree/pkg/api"
)

// InMemory keeps the payload in process memory.
type InMemory struct {
	mu  sync.Mutex
	p   api.Payload
	set bool
}

var _ api.Clipboard = (*InMemory)(nil)

func NewInMemory() *InMemory { return &InMemory{} }

func (c *InMemory) Set(ctx context.Context, p api.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.p = clonePayload(p)
	c.set = true
	return nil
}

func (c *InMemory) Get(ctx context.Context) (api.Payload, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		return api.Payload{}, false, nil
	}
	return clonePayload(c.p), true, nil
}

func clonePayload(p api.Payload) api.Payload {
	out := api.Payload{Format: p.Format, Component: slices.Clone(p.Component)}
	for _, c := range p.EmbeddedConnections {
		out.EmbeddedConnections = append(out.EmbeddedConnections, slices.Clone(c))
	}
	return out
}

func encodePayload(p api.Payload) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodePayload(data []byte) (api.Payload, error) {
	var p api.Payload
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p)
	return p, err
}
