package dispatch

import (
	"context"
	"log/slog"

	"github.com/datakeeper/scanrelay/scan"
)

// LogDispatcher only logs requests. Used on hosts without an indexer.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(ctx context.Context, req scan.Request) error {
	slog.Info("scan requested", "requestId", req.ID, "path", req.Path.Path, "uri", req.Path.URI, "kind", req.Kind)
	return nil
}
