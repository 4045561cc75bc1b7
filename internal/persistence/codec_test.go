package persistence

import (
	"errors"
	"testing"

	"github.com/petrijr/proctree/pkg/tree"
)

var testFactory = tree.FactoryFunc(func(class string) (tree.Kind, bool) {
	switch class {
	case tree.DefaultTaskClass:
		return tree.KindTask, true
	case "Constant", "Sum":
		return tree.KindCalculator, true
	}
	return 0, false
})

func sampleTask(t *testing.T) *tree.Node {
	t.Helper()

	task := tree.NewTask("Main")
	a := tree.NewCalculator("Constant", "a")
	b := tree.NewCalculator("Sum", "b")
	a.SetProperty("value", 2.5)
	a.SetProperty("label", "two and a half")
	b.SetProperty("ref", tree.RelativeLink(a.UUID()))
	b.SetSkipped(true)
	for _, c := range []*tree.Node{a, b} {
		if err := task.AppendChild(c); err != nil {
			t.Fatalf("AppendChild failed: %v", err)
		}
	}
	if err := task.AttachConnection(tree.NewConnection(a.UUID(), "output", b.UUID(), "a")); err != nil {
		t.Fatalf("AttachConnection failed: %v", err)
	}
	return task
}

func TestEncodeDecodeValue(t *testing.T) {
	for _, v := range []any{"s", 42, int64(7), 3.5, true, tree.RelativeLink("x")} {
		b, err := EncodeValue(v)
		if err != nil {
			t.Fatalf("EncodeValue(%v) failed: %v", v, err)
		}
		got, err := DecodeValue(b)
		if err != nil {
			t.Fatalf("DecodeValue(%v) failed: %v", v, err)
		}
		if got != v {
			t.Fatalf("expected %#v, got %#v", v, got)
		}
	}

	if got, err := DecodeValue(nil); err != nil || got != nil {
		t.Fatalf("expected nil for empty data, got %v, %v", got, err)
	}
}

func TestSnapshotRestore_KeepsIdentityAndStructure(t *testing.T) {
	ser := GobSerializer{}
	task := sampleTask(t)

	data, err := ser.Snapshot(task)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	got, err := ser.Restore(data, testFactory)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if got.UUID() != task.UUID() || got.Name() != "Main" || !got.IsTask() {
		t.Fatalf("unexpected root %s", got)
	}
	if got.ChildCount() != 2 {
		t.Fatalf("expected 2 children, got %d", got.ChildCount())
	}
	a, b := got.Child(0), got.Child(1)
	if v, _ := a.Property("value"); v != 2.5 {
		t.Fatalf("expected value 2.5, got %v", v)
	}
	if ref, _ := b.Property("ref"); ref != tree.RelativeLink(a.UUID()) {
		t.Fatalf("link not restored: %v", ref)
	}
	if !b.Skipped() {
		t.Fatalf("skip flag not restored")
	}
	conns := got.Connections()
	if len(conns) != 1 || conns[0].SourceUUID() != a.UUID() || conns[0].TargetUUID() != b.UUID() {
		t.Fatalf("connections not restored: %v", conns)
	}
}

func TestRestore_UnknownClassBecomesPlaceholder(t *testing.T) {
	ser := GobSerializer{}
	task := sampleTask(t)
	if err := task.AppendChild(tree.NewCalculator("Mystery", "m")); err != nil {
		t.Fatalf("AppendChild failed: %v", err)
	}

	data, err := ser.Snapshot(task)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	got, err := ser.Restore(data, testFactory)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	m := got.ChildByName("m")
	if m == nil || !m.IsPlaceholder() || m.Ready() {
		t.Fatalf("expected placeholder for unknown class, got %v", m)
	}
	if !got.HasPlaceholderDescendants() {
		t.Fatalf("expected task to report placeholder descendants")
	}
}

func TestCanRestoreAs(t *testing.T) {
	ser := GobSerializer{}
	task := sampleTask(t)

	taskData, _ := ser.Snapshot(task)
	calcData, _ := ser.Snapshot(task.Child(0))
	unknown, _ := ser.Snapshot(tree.NewCalculator("Mystery", "m"))

	if !ser.CanRestoreAs(taskData, tree.KindTask, testFactory) {
		t.Fatalf("task snapshot should restore as task")
	}
	if ser.CanRestoreAs(taskData, tree.KindCalculator, testFactory) {
		t.Fatalf("task snapshot must not restore as calculator")
	}
	if !ser.CanRestoreAs(calcData, tree.KindCalculator, testFactory) {
		t.Fatalf("calculator snapshot should restore as calculator")
	}
	if ser.CanRestoreAs(unknown, tree.KindCalculator, testFactory) {
		t.Fatalf("unknown class must not be restorable")
	}
	if ser.CanRestoreAs([]byte("garbage"), tree.KindTask, testFactory) {
		t.Fatalf("garbage must not be restorable")
	}
}

func TestRestore_CorruptData(t *testing.T) {
	ser := GobSerializer{}

	if _, err := ser.Restore(nil, testFactory); !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}
	if _, err := ser.RestoreConnection([]byte{1, 2, 3}); !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}
}

func TestConnectionSnapshotRoundTrip(t *testing.T) {
	ser := GobSerializer{}
	c := tree.NewConnection("s", "out", "t", "in")

	data, err := ser.SnapshotConnection(c)
	if err != nil {
		t.Fatalf("SnapshotConnection failed: %v", err)
	}
	got, err := ser.RestoreConnection(data)
	if err != nil {
		t.Fatalf("RestoreConnection failed: %v", err)
	}
	if got.UUID() != c.UUID() || !got.SameEndpoints(c) {
		t.Fatalf("unexpected connection %s", got)
	}
}
