// Package channel implements the method-call boundary of the relay.
// Hosts hand it (method, arguments) pairs and get a tagged Result back.
package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datakeeper/scanrelay/dispatch"
	"github.com/datakeeper/scanrelay/logger"
	"github.com/datakeeper/scanrelay/scan"
)

const (
	// Name is the channel identifier UI clients address.
	Name = "database_export_channel"

	MethodScanFile = "scanFile"
	ArgPath        = "path"

	defaultDispatchTimeout = 10 * time.Second
)

// Handler is the message-passing boundary every transport drives.
type Handler interface {
	Handle(ctx context.Context, method string, args map[string]any) Result
}

type Options struct {
	// SilentDispatchFailure reports success even if the indexer refused
	// the request. Failures are still logged.
	SilentDispatchFailure bool

	// DispatchTimeout bounds one submission. Zero means 10s.
	DispatchTimeout time.Duration
}

// Listener holds only immutable collaborators and is safe for concurrent use.
type Listener struct {
	validator  scan.Validator
	dispatcher dispatch.Dispatcher
	opts       Options
}

var _ Handler = (*Listener)(nil)

func NewListener(validator scan.Validator, dispatcher dispatch.Dispatcher, opts Options) *Listener {
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = defaultDispatchTimeout
	}
	return &Listener{
		validator:  validator,
		dispatcher: dispatcher,
		opts:       opts,
	}
}

func (l *Listener) Handle(ctx context.Context, method string, args map[string]any) Result {
	switch method {
	case MethodScanFile:
		return l.scanFile(ctx, args)
	default:
		return NotImplemented()
	}
}

func (l *Listener) scanFile(ctx context.Context, args map[string]any) Result {
	log, requestID := logger.NewRequestLogger()

	raw, _ := args[ArgPath].(string)
	path, err := l.validator.Validate(raw)
	if err != nil {
		log.Info("scanFile rejected", "path", logger.Truncate(raw, 120), "error", err)
		return validationResult(err)
	}

	req := scan.NewRequest(requestID, path)
	log = log.With("path", path.Path)

	if err := l.dispatch(ctx, req); err != nil {
		if l.opts.SilentDispatchFailure {
			log.Warn("scanFile dispatch failed (ignored)", "error", err)
			return Success()
		}
		log.Error("scanFile dispatch failed", "error", err)
		return Failure(ErrorSubmissionFailed, err.Error())
	}

	log.Info("scanFile dispatched", "uri", path.URI)
	return Success()
}

// dispatch submits req detached from the caller's cancellation: a
// caller that stops waiting does not recall the notification. The
// submission itself is bounded by DispatchTimeout. A dispatcher panic
// becomes a submission failure.
func (l *Listener) dispatch(ctx context.Context, req scan.Request) (err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.DispatchTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r, "dispatcher panic", "requestId", req.ID)
			err = &dispatch.Error{
				Kind:    dispatch.KindSubmissionFailed,
				Backend: "panic",
				Err:     fmt.Errorf("%v", r),
			}
		}
	}()
	return l.dispatcher.Dispatch(ctx, req)
}

func validationResult(err error) Result {
	var verr *scan.ValidationError
	if errors.As(err, &verr) && verr.Kind == scan.KindEmpty {
		return Failure(ErrorEmpty, err.Error())
	}
	return Failure(ErrorMalformed, err.Error())
}
