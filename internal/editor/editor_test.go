package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/proctree/internal/engine"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// recordingObserver keeps the edit callbacks it receives.
type recordingObserver struct {
	api.NoopObserver

	mu      sync.Mutex
	commits []string
	diags   []error
}

func (o *recordingObserver) OnEditCommitted(ctx context.Context, label string, scope *tree.Node) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.commits = append(o.commits, label)
}

func (o *recordingObserver) OnDiagnostic(ctx context.Context, op string, diag error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.diags = append(o.diags, diag)
}

// fixture builds
//
//	process
//	├── R      connections: a.output -> b.a, x.output -> a.a
//	│   ├── x
//	│   └── S
//	│       ├── a
//	│       └── b
//	└── R2
//	    └── y
type fixture struct {
	group, r, r2, s *tree.Node
	x, a, b, y      *tree.Node
	ab, xa          *tree.Connection
	journal         *Journal
	observer        *recordingObserver
	editor          *Editor
	ctx             context.Context
	registry        *engine.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		group:    tree.NewGroup("process"),
		r:        tree.NewTask("R"),
		r2:       tree.NewTask("R2"),
		s:        tree.NewTask("S"),
		journal:  NewJournal(nil),
		observer: &recordingObserver{},
		ctx:      context.Background(),
		registry: engine.NewDefaultRegistry(),
	}
	f.x = constant("x", 1)
	f.a = constant("a", 2)
	f.b = tree.NewCalculator(engine.ClassSum, "b")
	f.y = constant("y", 3)

	require.NoError(t, f.group.AppendChild(f.r))
	require.NoError(t, f.group.AppendChild(f.r2))
	require.NoError(t, f.r.AppendChild(f.x))
	require.NoError(t, f.r.AppendChild(f.s))
	require.NoError(t, f.s.AppendChild(f.a))
	require.NoError(t, f.s.AppendChild(f.b))
	require.NoError(t, f.r2.AppendChild(f.y))

	f.ab = tree.NewConnection(f.a.UUID(), engine.PropOutput, f.b.UUID(), engine.PropA)
	f.xa = tree.NewConnection(f.x.UUID(), engine.PropOutput, f.a.UUID(), engine.PropA)
	require.NoError(t, f.r.AttachConnection(f.ab))
	require.NoError(t, f.r.AttachConnection(f.xa))

	f.editor = New(Config{
		Factory:      f.registry,
		Transactions: f.journal,
		Observer:     f.observer,
	})
	return f
}

// linkTaskToX connects task S itself to x, outside of S.
func (f *fixture) linkTaskToX(t *testing.T) *tree.Connection {
	t.Helper()
	sx := tree.NewConnection(f.s.UUID(), "factor", f.x.UUID(), engine.PropValue)
	require.NoError(t, f.r.AttachConnection(sx))
	return sx
}

func constant(name string, v int) *tree.Node {
	c := tree.NewCalculator(engine.ClassConstant, name)
	c.SetProperty(engine.PropValue, v)
	return c
}

// referencing returns every connection in the tree below top with an
// endpoint in ids.
func referencing(top *tree.Node, ids map[string]bool) []*tree.Connection {
	var out []*tree.Connection
	for _, n := range append([]*tree.Node{top}, top.Descendants()...) {
		for _, c := range n.Connections() {
			if ids[c.SourceUUID()] || ids[c.TargetUUID()] {
				out = append(out, c)
			}
		}
	}
	return out
}

func countIs(errs []error, target error) int {
	n := 0
	for _, err := range errs {
		if errors.Is(err, target) {
			n++
		}
	}
	return n
}

func TestJournal_PairsBeginAndEnd(t *testing.T) {
	f := newFixture(t)

	_, err := f.editor.AddTask(f.ctx, f.group, "", "New")
	require.NoError(t, err)
	require.NoError(t, f.editor.Rename(f.ctx, f.x, "x2"))

	require.Equal(t, 0, f.journal.Open())
	require.Equal(t, []string{"Add Task", "Rename"}, f.journal.Labels())
	require.Equal(t, "process", f.journal.Entries()[0].Scope)
	require.Equal(t, []string{"Add Task", "Rename"}, f.observer.commits)

	cmd := &api.Command{ID: 99, Label: "stray"}
	f.journal.End(cmd)
	require.Len(t, f.journal.Entries(), 2)
}
