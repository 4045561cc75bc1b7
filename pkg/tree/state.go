package tree

// State is the execution state of a process component.
type State string

const (
	StateReady                State = "READY"
	StateQueued               State = "QUEUED"
	StateRunning              State = "RUNNING"
	StateConnecting           State = "CONNECTING"
	StateTerminationRequested State = "TERMINATION_REQUESTED"
	StateTerminated           State = "TERMINATED"
	StateFinished             State = "FINISHED"
	StateWarnFinished         State = "WARN_FINISHED"
	StateFailed               State = "FAILED"
	StateSkipped              State = "SKIPPED"
)

// Busy reports whether the state belongs to a unit that is queued or executing.
func (s State) Busy() bool {
	switch s {
	case StateRunning, StateQueued, StateConnecting, StateTerminationRequested:
		return true
	}
	return false
}

// Done reports whether the state is a final state of a run.
func (s State) Done() bool {
	switch s {
	case StateTerminated, StateFinished, StateWarnFinished, StateFailed, StateSkipped:
		return true
	}
	return false
}

func (n *Node) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

func (n *Node) SetState(s State) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
}

// SetStateRecursively sets s on n and every descendant.
func (n *Node) SetStateRecursively(s State) {
	n.SetState(s)
	n.Walk(func(c *Node) bool {
		c.SetState(s)
		return true
	})
}

// Progress returns the execution progress in percent.
func (n *Node) Progress() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.progress
}

// SetProgress sets the execution progress, clamped to [0, 100].
func (n *Node) SetProgress(p int) {
	p = max(0, min(p, 100))
	n.mu.Lock()
	n.progress = p
	n.mu.Unlock()
}
