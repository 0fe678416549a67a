package dispatch

import (
	"context"

	"github.com/datakeeper/scanrelay/scan"
)

// Observer is told about requests the indexer accepted.
type Observer interface {
	Dispatched(req scan.Request)
}

// Observed wraps a dispatcher and reports successful submissions.
type Observed struct {
	Next     Dispatcher
	Observer Observer
}

func (o Observed) Dispatch(ctx context.Context, req scan.Request) error {
	if err := o.Next.Dispatch(ctx, req); err != nil {
		return err
	}
	if o.Observer != nil {
		o.Observer.Dispatched(req)
	}
	return nil
}
