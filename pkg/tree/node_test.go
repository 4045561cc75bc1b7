package tree

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func buildTask(t *testing.T) (*Node, *Node, *Node, *Node) {
	t.Helper()

	group := NewGroup("Process")
	task := NewTask("Main")
	a := NewCalculator("Constant", "a")
	b := NewCalculator("Sum", "b")

	for _, step := range []struct {
		parent, child *Node
	}{{group, task}, {task, a}, {task, b}} {
		if err := step.parent.AppendChild(step.child); err != nil {
			t.Fatalf("AppendChild failed: %v", err)
		}
	}
	return group, task, a, b
}

func TestAppendChild_SlotRules(t *testing.T) {
	group := NewGroup("Process")
	calc := NewCalculator("Constant", "c")

	if err := group.AppendChild(calc); !errors.Is(err, ErrSlotMismatch) {
		t.Fatalf("expected ErrSlotMismatch for calculator in group, got %v", err)
	}

	task := NewTask("T")
	if err := group.AppendChild(task); err != nil {
		t.Fatalf("AppendChild task failed: %v", err)
	}
	if err := task.AppendChild(calc); err != nil {
		t.Fatalf("AppendChild calc failed: %v", err)
	}
	if err := calc.AppendChild(NewTask("nested")); !errors.Is(err, ErrSlotMismatch) {
		t.Fatalf("expected ErrSlotMismatch for task in calculator, got %v", err)
	}
	if err := calc.AppendChild(NewCalculator("Constant", "inner")); err != nil {
		t.Fatalf("nested calculator rejected: %v", err)
	}
}

func TestAppendChild_RejectsDuplicateNameAndCycles(t *testing.T) {
	_, task, _, _ := buildTask(t)

	if err := task.AppendChild(NewCalculator("Constant", "a")); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	inner := NewTask("Inner")
	if err := task.AppendChild(inner); err != nil {
		t.Fatalf("AppendChild failed: %v", err)
	}
	task.Detach()
	if err := inner.AppendChild(task); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestInsertChild_Order(t *testing.T) {
	_, task, a, b := buildTask(t)
	c := NewCalculator("Constant", "c")

	if err := task.InsertChild(c, 1); err != nil {
		t.Fatalf("InsertChild failed: %v", err)
	}
	got := task.Children()
	if len(got) != 3 || got[0] != a || got[1] != c || got[2] != b {
		t.Fatalf("unexpected order: %v", got)
	}
	if c.Row() != 1 {
		t.Fatalf("expected row 1, got %d", c.Row())
	}
}

func TestUniqueChildName(t *testing.T) {
	_, task, _, _ := buildTask(t)

	if got := task.UniqueChildName("x"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
	if got := task.UniqueChildName("a"); got != "a[1]" {
		t.Fatalf("expected a[1], got %q", got)
	}
	if err := task.AppendChild(NewCalculator("Constant", "a[1]")); err != nil {
		t.Fatalf("AppendChild failed: %v", err)
	}
	if got := task.UniqueChildName("a"); got != "a[2]" {
		t.Fatalf("expected a[2], got %q", got)
	}
}

func TestDescendantsPreOrderAndLookup(t *testing.T) {
	group, task, a, b := buildTask(t)
	inner := NewCalculator("Constant", "inner")
	if err := a.AppendChild(inner); err != nil {
		t.Fatalf("AppendChild failed: %v", err)
	}

	got := group.Descendants()
	want := []*Node{task, a, inner, b}
	if len(got) != len(want) {
		t.Fatalf("expected %d descendants, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("descendant %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if group.FindByUUID(inner.UUID()) != inner {
		t.Fatalf("FindByUUID did not find nested calculator")
	}
	if group.FindPath("Main/a/inner") != inner {
		t.Fatalf("FindPath did not resolve nested calculator")
	}
	if inner.Path() != "Main/a/inner" {
		t.Fatalf("unexpected path %q", inner.Path())
	}
	if !task.IsAncestorOf(inner) || inner.IsAncestorOf(task) {
		t.Fatalf("IsAncestorOf returned wrong result")
	}
}

func TestReady(t *testing.T) {
	group, task, a, _ := buildTask(t)

	if !a.Ready() {
		t.Fatalf("expected calculator to be ready")
	}

	task.SetState(StateRunning)
	if a.Ready() || task.Ready() {
		t.Fatalf("components of a running task must not be ready")
	}
	task.SetState(StateFinished)

	ph := NewPlaceholder(KindTask, "Unknown", "Ghost")
	if err := group.AppendChild(ph); err != nil {
		t.Fatalf("AppendChild failed: %v", err)
	}
	child := NewCalculator("Constant", "under-ghost")
	if err := ph.AppendChild(child); err != nil {
		t.Fatalf("AppendChild failed: %v", err)
	}
	if ph.Ready() || child.Ready() {
		t.Fatalf("placeholders and their descendants must not be ready")
	}
	if !group.HasPlaceholderDescendants() {
		t.Fatalf("expected group to report placeholder descendants")
	}
}

func TestSetName(t *testing.T) {
	_, _, a, b := buildTask(t)

	if err := b.SetName("a"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if err := a.SetName(""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := a.SetName("alpha"); err != nil || a.Name() != "alpha" {
		t.Fatalf("rename failed: %v", err)
	}
}

func TestSetStateRecursivelyAndProgress(t *testing.T) {
	_, task, a, b := buildTask(t)

	task.SetStateRecursively(StateQueued)
	for _, n := range []*Node{task, a, b} {
		if n.State() != StateQueued {
			t.Fatalf("expected QUEUED on %s, got %s", n, n.State())
		}
	}

	task.SetProgress(150)
	if task.Progress() != 100 {
		t.Fatalf("expected progress clamped to 100, got %d", task.Progress())
	}
}

func TestConnections_AttachOnlyOnTasks(t *testing.T) {
	_, task, a, b := buildTask(t)
	c := NewConnection(a.UUID(), "output", b.UUID(), "a")

	if err := a.AttachConnection(c); !errors.Is(err, ErrNotTask) {
		t.Fatalf("expected ErrNotTask, got %v", err)
	}
	if err := task.AttachConnection(c); err != nil {
		t.Fatalf("AttachConnection failed: %v", err)
	}
	if c.Owner() != task || len(task.Connections()) != 1 {
		t.Fatalf("connection not stored on task")
	}
	if !task.DetachConnection(c) || c.Owner() != nil {
		t.Fatalf("DetachConnection failed")
	}
}

func TestProperties_ConcurrentReadWrite(t *testing.T) {
	calc := NewCalculator("Sum", "c")
	calc.SetProperty("a", 0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			calc.SetProperty("a", i)
			calc.SetProperty(fmt.Sprintf("p%d", i%10), RelativeLink("x"))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, _ = calc.Property("a")
			_ = calc.Properties()
			_ = calc.Links()
			_ = calc.Copy()
		}
	}()
	wg.Wait()

	if v, ok := calc.Property("a"); !ok || v != 499 {
		t.Fatalf("expected last write to win, got %v %v", v, ok)
	}
	if got := len(calc.Links()); got != 10 {
		t.Fatalf("expected 10 links, got %d", got)
	}
}
