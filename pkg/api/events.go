package api

import "time"

// EventType identifies a history event.
type EventType string

const (
	EventTaskQueued           EventType = "task.queued"
	EventTaskStarted          EventType = "task.started"
	EventTaskFinished         EventType = "task.finished"
	EventTaskFailed           EventType = "task.failed"
	EventTaskTerminated       EventType = "task.terminated"
	EventTerminationRequested EventType = "task.termination_requested"
	EventComponentCompleted   EventType = "component.completed"
	EventEditCommitted        EventType = "edit.committed"
	EventEditDiagnostic       EventType = "edit.diagnostic"
)

// Event is an append-only history record for audit and debugging.
type Event struct {
	ComponentUUID string
	At            time.Time
	Type          EventType

	// Optional context.
	Component string
	State     string

	// Small, human-oriented details. Keep this low-volume.
	Detail string
}
