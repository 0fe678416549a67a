package dispatch

import (
	"context"
	"errors"

	"github.com/datakeeper/scanrelay/scan"
)

// Multi submits each request to every dispatcher in order. All are
// attempted; the joined failures are reported as one submission failure.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, req scan.Request) error {
	var errs []error
	for _, d := range m {
		if err := d.Dispatch(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return submissionFailed("multi", errors.Join(errs...))
}
