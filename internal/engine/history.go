package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/petrijr/proctree/internal/persistence"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// HistoryObserver records execution and edit events in an EventStore.
// Store errors are logged and otherwise ignored.
type HistoryObserver struct {
	api.NoopObserver

	store  persistence.EventStore
	logger *slog.Logger
	now    func() time.Time
}

// NewHistoryObserver creates an observer appending to store.
func NewHistoryObserver(store persistence.EventStore, logger *slog.Logger) *HistoryObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryObserver{store: store, logger: logger, now: time.Now}
}

func (h *HistoryObserver) append(ctx context.Context, ev api.Event) {
	ev.At = h.now()
	if err := h.store.AppendEvent(context.WithoutCancel(ctx), ev); err != nil {
		h.logger.WarnContext(ctx, "history_append_failed",
			slog.String("type", string(ev.Type)),
			slog.Any("error", err),
		)
	}
}

func componentEvent(n *tree.Node, typ api.EventType) api.Event {
	return api.Event{
		ComponentUUID: n.UUID(),
		Type:          typ,
		Component:     n.Name(),
		State:         string(n.State()),
	}
}

func (h *HistoryObserver) OnTaskQueued(ctx context.Context, task *tree.Node) {
	h.append(ctx, componentEvent(task, api.EventTaskQueued))
}

func (h *HistoryObserver) OnTaskStart(ctx context.Context, task *tree.Node) {
	h.append(ctx, componentEvent(task, api.EventTaskStarted))
}

func (h *HistoryObserver) OnTaskFinished(ctx context.Context, task *tree.Node, state tree.State, err error) {
	typ := api.EventTaskFinished
	switch state {
	case tree.StateFailed:
		typ = api.EventTaskFailed
	case tree.StateTerminated:
		typ = api.EventTaskTerminated
	}
	ev := componentEvent(task, typ)
	ev.State = string(state)
	if err != nil {
		ev.Detail = err.Error()
	}
	h.append(ctx, ev)
}

func (h *HistoryObserver) OnTerminationRequested(ctx context.Context, task *tree.Node) {
	h.append(ctx, componentEvent(task, api.EventTerminationRequested))
}

func (h *HistoryObserver) OnComponentCompleted(ctx context.Context, comp *tree.Node, err error, d time.Duration) {
	ev := componentEvent(comp, api.EventComponentCompleted)
	ev.Detail = d.String()
	if err != nil {
		ev.Detail = err.Error()
	}
	h.append(ctx, ev)
}

func (h *HistoryObserver) OnEditCommitted(ctx context.Context, label string, scope *tree.Node) {
	ev := api.Event{Type: api.EventEditCommitted, Detail: label}
	if scope != nil {
		ev.ComponentUUID = scope.UUID()
		ev.Component = scope.Name()
	}
	h.append(ctx, ev)
}

func (h *HistoryObserver) OnDiagnostic(ctx context.Context, op string, diag error) {
	h.append(ctx, api.Event{
		Type:      api.EventEditDiagnostic,
		Component: op,
		Detail:    diag.Error(),
	})
}
