package proctree

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/petrijr/proctree/pkg/api"
	workerpkg "github.com/petrijr/proctree/pkg/worker"
	"github.com/stretchr/testify/require"
)

// TestSQLiteBundle_DurableAcrossRestart demonstrates that an edited process
// group and its execution history survive a simulated process restart.
func TestSQLiteBundle_DurableAcrossRestart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbPath := filepath.Join(t.TempDir(), "proctree_bundle.db")
	dsn := "file:" + dbPath + "?_journal=WAL"

	// --- Phase 1: build, edit and run a task, then save.

	db1, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	bundle1, err := NewSQLiteBundle(db1, workerpkg.Config{})
	require.NoError(t, err)

	group := NewGroup("project")
	require.NoError(t, NewTask("Compute").
		Calculator(ClassConstant, "two", Prop("value", 2)).
		Calculator(ClassConstant, "three", Prop("value", 3)).
		Calculator(ClassSum, "sum").
		Connect("two", "output", "sum", "a").
		Connect("three", "output", "sum", "b").
		AddTo(group))
	task := group.ChildByName("Compute")

	res, err := bundle1.Editor.Clone(ctx, task)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, []string{"Clone"}, bundle1.Journal.Labels())

	outcome, err := bundle1.Coordinator.Run(task)
	require.NoError(t, err)
	require.Equal(t, OutcomeStarted, outcome)

	processed, err := bundle1.Worker.ProcessOne(ctx)
	require.NoError(t, err)
	require.True(t, processed)
	require.Equal(t, StateFinished, task.State())

	require.NoError(t, bundle1.SaveGroup(ctx, group))
	require.NoError(t, db1.Close())

	// --- Phase 2: "restart" with a new bundle on the same database.

	db2, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db2.Close()

	bundle2, err := NewSQLiteBundle(db2, workerpkg.Config{})
	require.NoError(t, err)

	names, err := bundle2.Groups(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"project"}, names)

	restored, err := bundle2.LoadGroup(ctx, "project")
	require.NoError(t, err)
	require.Equal(t, 2, restored.ChildCount())

	clone := restored.Child(1)
	require.Equal(t, task.UUID(), restored.Child(0).UUID())
	require.NotEqual(t, task.UUID(), clone.UUID())
	require.Len(t, clone.Connections(), 2)

	// The clone runs on its own in the new process.
	_, err = bundle2.Coordinator.Run(clone)
	require.NoError(t, err)
	processed, err = bundle2.Worker.ProcessOne(ctx)
	require.NoError(t, err)
	require.True(t, processed)

	sum, ok := clone.ChildByName("sum").Property("output")
	require.True(t, ok)
	require.Equal(t, float64(5), sum)

	// History from both processes is kept in one table.
	started, err := bundle2.History(ctx, EventFilter{Type: api.EventTaskStarted})
	require.NoError(t, err)
	require.Len(t, started, 2)
	require.Equal(t, task.UUID(), started[0].ComponentUUID)
	require.Equal(t, clone.UUID(), started[1].ComponentUUID)

	edits, err := bundle2.History(ctx, EventFilter{Type: api.EventEditCommitted})
	require.NoError(t, err)
	require.Len(t, edits, 1)
}
