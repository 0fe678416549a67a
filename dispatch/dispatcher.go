// Package dispatch submits content-changed notifications to the host's
// media indexer.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/datakeeper/scanrelay/scan"
)

// Dispatcher submits one request to the indexer. Submission is
// fire-and-forget: returning nil means the facility accepted the
// request, not that the file has been indexed.
type Dispatcher interface {
	Dispatch(ctx context.Context, req scan.Request) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, req scan.Request) error

func (f DispatcherFunc) Dispatch(ctx context.Context, req scan.Request) error {
	return f(ctx, req)
}

// ErrorKind classifies dispatch failures. Submission failure is the only one.
type ErrorKind string

const KindSubmissionFailed ErrorKind = "submission_failed"

var ErrSubmissionFailed = errors.New("submission failed")

// Error reports that the indexer facility refused or could not take the request.
type Error struct {
	Kind    ErrorKind
	Backend string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Backend, ErrSubmissionFailed)
	}
	return fmt.Sprintf("%s: %s: %v", e.Backend, ErrSubmissionFailed, e.Err)
}

func (e *Error) Is(target error) bool { return target == ErrSubmissionFailed }

func (e *Error) Unwrap() error { return e.Err }

func submissionFailed(backend string, err error) error {
	return &Error{Kind: KindSubmissionFailed, Backend: backend, Err: err}
}
