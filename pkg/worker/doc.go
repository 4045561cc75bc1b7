// Package worker provides the background loop that executes process tasks.
//
// The execution service (see internal/engine) only decides which task runs;
// it never spawns goroutines itself. A Worker pulls the task that has been
// promoted to running and executes it on its own goroutine, then waits for
// the next one. Only one task runs at a time, so one worker is enough; extra
// workers simply wait.
//
// Termination is cooperative: the executor cancels the per-run context and
// the running task stops at its next safe point. Cancelling the context
// passed to Run stops the worker the same way.
//
// Most applications use proctree.LocalRunner, which starts and stops a
// worker goroutine for them.
package worker
