package watch

import (
	"log/slog"

	"github.com/datakeeper/scanrelay/dispatch"
	"github.com/datakeeper/scanrelay/scan"
)

// MethodScanDispatched is the notification sent after an indexer accepted a request.
const MethodScanDispatched = "scan.dispatched"

// ScanDispatchedParams is the payload of a scan.dispatched notification.
type ScanDispatchedParams struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Path      string    `json:"path"`
	URI       string    `json:"uri"`
	Kind      scan.Kind `json:"kind"`
}

// EventWatcher fans accepted scan requests out to subscribers. It is the
// dispatch.Observer behind the scan.subscribe RPC. Each subscriber gets
// its own bounded queue, so Dispatched never waits on a slow client.
type EventWatcher struct {
	*BaseWatcher
}

var _ dispatch.Observer = (*EventWatcher)(nil)

func NewEventWatcher() *EventWatcher {
	return &EventWatcher{BaseWatcher: NewBaseWatcher("s")}
}

func (w *EventWatcher) Subscribe(notifier Notifier) string {
	id := w.GenerateID()
	q := newQueuedNotifier(w.Context(), notifier, defaultQueueSize)
	w.AddSubscription(&Subscription{ID: id, Notifier: q})
	return id
}

func (w *EventWatcher) Unsubscribe(id string) {
	if sub := w.RemoveSubscription(id); sub != nil {
		closeQueue(sub)
	}
}

func (w *EventWatcher) Dispatched(req scan.Request) {
	if w.Context().Err() != nil || !w.HasSubscriptions() {
		return
	}
	n := w.NotifyAll(MethodScanDispatched, func(sub *Subscription) any {
		return ScanDispatchedParams{
			ID:        sub.ID,
			RequestID: req.ID,
			Path:      req.Path.Path,
			URI:       req.Path.URI,
			Kind:      req.Kind,
		}
	})
	slog.Debug("notified scan dispatched", "scanId", req.ID, "subscribers", n)
}

func (w *EventWatcher) Stop() {
	w.Cancel()
	for _, sub := range w.GetAllSubscriptions() {
		w.Unsubscribe(sub.ID)
	}
}

func closeQueue(sub *Subscription) {
	if q, ok := sub.Notifier.(*queuedNotifier); ok {
		q.close()
	}
}
