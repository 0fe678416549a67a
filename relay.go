package main

import (
	"log/slog"
	"net/http"

	"github.com/datakeeper/scanrelay/api"
	"github.com/datakeeper/scanrelay/channel"
	"github.com/datakeeper/scanrelay/config"
	"github.com/datakeeper/scanrelay/dispatch"
	"github.com/datakeeper/scanrelay/middleware"
	"github.com/datakeeper/scanrelay/scan"
	"github.com/datakeeper/scanrelay/watch"
	"github.com/datakeeper/scanrelay/ws"
)

// newListener wires validator and dispatcher for the export channel.
// A non-nil observer is told about every accepted request.
func newListener(cfg *config.Config, observer dispatch.Observer) (*channel.Listener, error) {
	dc, err := cfg.Dispatch()
	if err != nil {
		return nil, err
	}
	d, err := dispatch.New(dc)
	if err != nil {
		return nil, err
	}
	if observer != nil {
		d = dispatch.Observed{Next: d, Observer: observer}
	}

	slog.Info("dispatcher configured", "backends", cfg.Dispatchers)
	return channel.NewListener(
		scan.Validator{BaseDir: cfg.BaseDir},
		d,
		channel.Options{SilentDispatchFailure: cfg.LegacySilent},
	), nil
}

func newHandler(token string, devMode bool, channels channel.Registry, events *watch.EventWatcher) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// WebSocket endpoint (handles its own auth via the first RPC)
	mux.Handle("GET /ws", ws.NewRPCHandler(token, version, devMode, channels, events))

	api.NewChannelHandler(channels).Register(mux)

	return middleware.Auth(token, "/health", "/ws")(mux)
}
