package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

var (
	// ErrGroupNotFound is returned when no process group is stored under a name.
	ErrGroupNotFound = errors.New("process group not found")
)

// GroupRecord is a stored process group snapshot.
type GroupRecord struct {
	Name      string
	Snapshot  []byte
	UpdatedAt time.Time
}

// ProjectStore keeps process group snapshots by name.
type ProjectStore interface {
	// SaveGroup inserts or replaces the record stored under rec.Name.
	SaveGroup(ctx context.Context, rec GroupRecord) error
	GetGroup(ctx context.Context, name string) (GroupRecord, error)
	// ListGroups returns the stored names in ascending order.
	ListGroups(ctx context.Context) ([]string, error)
	DeleteGroup(ctx context.Context, name string) error
}

// SaveGroup snapshots g with ser and stores it under g's name.
func SaveGroup(ctx context.Context, store ProjectStore, ser api.Serializer, g *tree.Node) error {
	if g == nil || !g.IsGroup() {
		return fmt.Errorf("save group: %w", tree.ErrSlotMismatch)
	}
	data, err := ser.Snapshot(g)
	if err != nil {
		return fmt.Errorf("snapshot group %q: %w", g.Name(), err)
	}
	return store.SaveGroup(ctx, GroupRecord{Name: g.Name(), Snapshot: data, UpdatedAt: time.Now()})
}

// LoadGroup restores the process group stored under name.
func LoadGroup(ctx context.Context, store ProjectStore, ser api.Serializer, name string, f tree.Factory) (*tree.Node, error) {
	rec, err := store.GetGroup(ctx, name)
	if err != nil {
		return nil, err
	}
	g, err := ser.Restore(rec.Snapshot, f)
	if err != nil {
		return nil, fmt.Errorf("restore group %q: %w", name, err)
	}
	if !g.IsGroup() {
		return nil, fmt.Errorf("restore group %q: %w: stored %s", name, ErrCorruptSnapshot, g.Kind())
	}
	return g, nil
}
