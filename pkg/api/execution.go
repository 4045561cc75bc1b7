package api

import "github.com/petrijr/proctree/pkg/tree"

// ExecutionService owns the single shared execution resource: at most one
// task is running at any time, further tasks wait in a FIFO queue.
type ExecutionService interface {
	// Run queues task and starts it right away when nothing is running.
	// It fails with ErrAlreadyQueued when task is already waiting.
	Run(task *tree.Node) error

	// RequestTermination asks the running task to stop at its next safe
	// point. It fails with ErrNotRunning when task is not the running task
	// and with ErrTerminationState when a stop was already requested.
	RequestTermination(task *tree.Node) error

	// CurrentRunning returns the running task or nil.
	CurrentRunning() *tree.Node

	// IsQueued reports whether task waits in the run queue.
	IsQueued(task *tree.Node) bool

	// OnQueueChanged registers fn to be called after every change of the
	// running task or the queue. The returned function unsubscribes.
	OnQueueChanged(fn func()) (unsubscribe func())
}
