package watch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

const defaultQueueSize = 64

var (
	ErrQueueFull   = errors.New("notification queue full")
	ErrQueueClosed = errors.New("notification queue closed")
)

// queuedNotifier decouples a subscriber from the code raising events.
// Notify only enqueues; a goroutine per subscriber delivers in order.
// When the subscriber falls behind, new notifications are dropped.
type queuedNotifier struct {
	next  Notifier
	queue chan Notification
	done  chan struct{}
	once  sync.Once
}

func newQueuedNotifier(ctx context.Context, next Notifier, size int) *queuedNotifier {
	q := &queuedNotifier{
		next:  next,
		queue: make(chan Notification, size),
		done:  make(chan struct{}),
	}
	go q.run(ctx)
	return q
}

func (q *queuedNotifier) Notify(ctx context.Context, n Notification) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *queuedNotifier) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.done:
			return
		case n := <-q.queue:
			if err := q.next.Notify(ctx, n); err != nil {
				slog.Debug("failed to deliver notification", "method", n.Method, "error", err)
			}
		}
	}
}

func (q *queuedNotifier) close() {
	q.once.Do(func() { close(q.done) })
}
