package persistence

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

func init() {
	gob.Register(tree.RelativeLink(""))
}

// ErrCorruptSnapshot is returned when snapshot bytes do not describe a valid
// component tree.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

type nodeRecord struct {
	Kind        int
	Class       string
	Name        string
	UUID        string
	Origin      string
	Placeholder bool
	Skipped     bool
	Props       []propRecord
	Children    []nodeRecord
	Connections []connRecord
}

type propRecord struct {
	Ident string
	Value []byte
}

type connRecord struct {
	UUID       string
	Source     string
	SourceProp string
	Target     string
	TargetProp string
}

// GobSerializer snapshots components with encoding/gob. Snapshots keep UUIDs;
// execution state is not part of a snapshot.
type GobSerializer struct{}

var _ api.Serializer = GobSerializer{}

func (GobSerializer) Snapshot(n *tree.Node) ([]byte, error) {
	if n == nil {
		return nil, tree.ErrNilNode
	}
	rec, err := toRecord(n)
	if err != nil {
		return nil, err
	}
	return encodeRecord(rec)
}

func (GobSerializer) SnapshotConnection(c *tree.Connection) ([]byte, error) {
	return encodeRecord(toConnRecord(c))
}

func (GobSerializer) Restore(data []byte, f tree.Factory) (*tree.Node, error) {
	var rec nodeRecord
	if err := decodeRecord(data, &rec); err != nil {
		return nil, err
	}
	return fromRecord(rec, f)
}

func (GobSerializer) RestoreConnection(data []byte) (*tree.Connection, error) {
	var rec connRecord
	if err := decodeRecord(data, &rec); err != nil {
		return nil, err
	}
	if rec.Source == "" || rec.Target == "" {
		return nil, fmt.Errorf("%w: connection without endpoints", ErrCorruptSnapshot)
	}
	return fromConnRecord(rec), nil
}

func (GobSerializer) CanRestoreAs(data []byte, kind tree.Kind, f tree.Factory) bool {
	var rec nodeRecord
	if err := decodeRecord(data, &rec); err != nil {
		return false
	}
	if tree.Kind(rec.Kind) != kind || rec.Placeholder {
		return false
	}
	return known(f, rec.Class, kind)
}

func known(f tree.Factory, class string, kind tree.Kind) bool {
	if f == nil || kind == tree.KindGroup {
		return true
	}
	k, ok := f.Lookup(class)
	return ok && k == kind
}

func encodeRecord(rec any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte, rec any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty", ErrCorruptSnapshot)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(rec); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return nil
}

func toRecord(n *tree.Node) (nodeRecord, error) {
	rec := nodeRecord{
		Kind:        int(n.Kind()),
		Class:       n.Class(),
		Name:        n.Name(),
		UUID:        n.UUID(),
		Origin:      n.Origin(),
		Placeholder: n.IsPlaceholder(),
		Skipped:     n.Skipped(),
	}
	for _, p := range n.Properties() {
		b, err := EncodeValue(p.Value)
		if err != nil {
			return rec, fmt.Errorf("property %q of %s: %w", p.Ident, n, err)
		}
		rec.Props = append(rec.Props, propRecord{Ident: p.Ident, Value: b})
	}
	for _, c := range n.Connections() {
		rec.Connections = append(rec.Connections, toConnRecord(c))
	}
	for _, child := range n.Children() {
		cr, err := toRecord(child)
		if err != nil {
			return rec, err
		}
		rec.Children = append(rec.Children, cr)
	}
	return rec, nil
}

func fromRecord(rec nodeRecord, f tree.Factory) (*tree.Node, error) {
	kind := tree.Kind(rec.Kind)
	if kind < tree.KindGroup || kind > tree.KindCalculator {
		return nil, fmt.Errorf("%w: kind %d", ErrCorruptSnapshot, rec.Kind)
	}

	var n *tree.Node
	switch {
	case rec.Placeholder || !known(f, rec.Class, kind):
		n = tree.NewPlaceholder(kind, rec.Class, rec.Name)
	case kind == tree.KindGroup:
		n = tree.NewGroup(rec.Name)
	case kind == tree.KindTask:
		n = tree.NewTaskOfClass(rec.Class, rec.Name)
	default:
		n = tree.NewCalculator(rec.Class, rec.Name)
	}
	if rec.UUID != "" {
		n.SetUUID(rec.UUID)
	}
	n.SetOrigin(rec.Origin)
	n.SetSkipped(rec.Skipped)

	for _, p := range rec.Props {
		v, err := DecodeValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: property %q: %v", ErrCorruptSnapshot, p.Ident, err)
		}
		n.SetProperty(p.Ident, v)
	}
	for _, cr := range rec.Connections {
		if err := n.AttachConnection(fromConnRecord(cr)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
	}
	for _, cr := range rec.Children {
		child, err := fromRecord(cr, f)
		if err != nil {
			return nil, err
		}
		if err := n.AppendChild(child); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
	}
	return n, nil
}

func toConnRecord(c *tree.Connection) connRecord {
	return connRecord{
		UUID:       c.UUID(),
		Source:     c.SourceUUID(),
		SourceProp: c.SourceProperty(),
		Target:     c.TargetUUID(),
		TargetProp: c.TargetProperty(),
	}
}

func fromConnRecord(rec connRecord) *tree.Connection {
	c := tree.NewConnection(rec.Source, rec.SourceProp, rec.Target, rec.TargetProp)
	if rec.UUID != "" {
		c.SetUUID(rec.UUID)
	}
	return c
}
