package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	interactive = func() bool { return false }

	cmd := NewRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--project", dir}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dir, args...)
	require.NoError(t, err, "proctree %v", args)
	return out
}

// newComputeProject creates a project with a task that sums two constants.
func newComputeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	mustRun(t, dir, "init")
	mustRun(t, dir, "add", "task", "/", "Compute")
	mustRun(t, dir, "add", "calc", "Compute", "Constant", "two", "--set", "value=2")
	mustRun(t, dir, "add", "calc", "Compute", "Constant", "three", "--set", "value=3")
	mustRun(t, dir, "add", "calc", "Compute", "Sum", "sum")
	mustRun(t, dir, "connect", "Compute/two.output", "Compute/sum.a")
	mustRun(t, dir, "connect", "Compute/three.output", "Compute/sum.b")
	return dir
}

func TestCLI_BuildShowAndRun(t *testing.T) {
	dir := newComputeProject(t)

	out := mustRun(t, dir, "show", "-p")
	require.Contains(t, out, "Compute [Task")
	require.Contains(t, out, "~ Compute/two.output -> Compute/sum.a")
	require.Contains(t, out, ". value = 2")

	out = mustRun(t, dir, "run", "Compute/sum")
	require.Contains(t, out, "Compute: FINISHED")
	require.Contains(t, out, "sum: FINISHED (output=5)")

	// outputs were saved with the group
	out = mustRun(t, dir, "show", "-p", "Compute/sum")
	require.Contains(t, out, ". output = 5")

	out = mustRun(t, dir, "history", "--type", "task.finished")
	require.Contains(t, out, "task.finished")
	require.Contains(t, out, "Compute")
}

func TestCLI_InitTwiceKeepsGroup(t *testing.T) {
	dir := newComputeProject(t)

	out := mustRun(t, dir, "init")
	require.Contains(t, out, `group "main" already exists`)

	out = mustRun(t, dir, "show")
	require.Contains(t, out, "Compute")
}

func TestCLI_CopyPasteAcrossInvocations(t *testing.T) {
	dir := newComputeProject(t)

	mustRun(t, dir, "copy", "Compute")
	out := mustRun(t, dir, "paste", "/")
	require.Contains(t, out, "pasted Compute[1]")

	out = mustRun(t, dir, "show", "-p", "Compute[1]")
	require.Contains(t, out, "~ Compute[1]/two.output -> Compute[1]/sum.a")

	out = mustRun(t, dir, "run", "Compute[1]")
	require.Contains(t, out, "sum: FINISHED (output=5)")
}

func TestCLI_CloneAndMove(t *testing.T) {
	dir := newComputeProject(t)

	out := mustRun(t, dir, "clone", "Compute")
	require.Contains(t, out, "cloned Compute as Compute[1]")

	mustRun(t, dir, "add", "task", "/", "Outer")
	out = mustRun(t, dir, "move", "Compute[1]", "--to", "Outer")
	require.Contains(t, out, "moved to Outer/Compute[1]")

	// the internal connections moved onto the new highest parent task
	out = mustRun(t, dir, "show", "-p", "Outer")
	require.Contains(t, out, "~ Outer/Compute[1]/two.output -> Outer/Compute[1]/sum.a")
}

func TestCLI_DeleteNeedsConfirmation(t *testing.T) {
	dir := newComputeProject(t)

	_, err := runCLI(t, dir, "delete", "Compute/two")
	require.ErrorIs(t, err, errNotConfirmed)

	// nothing was removed
	out := mustRun(t, dir, "show")
	require.Contains(t, out, "two")

	mustRun(t, dir, "--yes", "delete", "Compute/two", "Compute/three")
	out = mustRun(t, dir, "show", "-p")
	require.NotContains(t, out, "two")
	require.NotContains(t, out, "three")
	require.NotContains(t, out, "~ ")
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "show")
	require.ErrorIs(t, err, errGroupMissing)

	mustRun(t, dir, "init")

	_, err = runCLI(t, dir, "show", "Missing")
	require.ErrorIs(t, err, errUnknownPath)

	mustRun(t, dir, "add", "task", "/", "T")
	_, err = runCLI(t, dir, "connect", "T", "T.b")
	require.ErrorIs(t, err, errBadEndpoint)
}

func TestParseValue(t *testing.T) {
	require.Equal(t, 2, parseValue("2"))
	require.Equal(t, 2.5, parseValue("2.5"))
	require.Equal(t, true, parseValue("true"))
	require.Equal(t, "hello", parseValue("hello"))
}
