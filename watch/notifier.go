package watch

import "context"

// Notification represents a message to be sent to a subscriber.
type Notification struct {
	Method string
	Params any
}

// Notifier abstracts the mechanism for sending notifications.
// WebSocket clients use JSONRPCNotifier; other clients can provide their own implementation.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }
