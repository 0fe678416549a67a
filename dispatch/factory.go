package dispatch

import (
	"fmt"
	"strings"
)

// Backend names accepted by New.
const (
	BackendBroadcast = "broadcast"
	BackendCommand   = "command"
	BackendJellyfin  = "jellyfin"
	BackendLog       = "log"
)

type Config struct {
	// Backends lists the dispatchers to use; more than one yields a Multi.
	Backends      []string
	Command       []string
	JellyfinURL   string
	JellyfinToken string
	Runner        Runner
}

// New builds the dispatcher described by cfg.
func New(cfg Config) (Dispatcher, error) {
	if len(cfg.Backends) == 0 {
		return nil, fmt.Errorf("no dispatcher configured")
	}

	var ds Multi
	for _, name := range cfg.Backends {
		d, err := newBackend(strings.TrimSpace(name), cfg)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	if len(ds) == 1 {
		return ds[0], nil
	}
	return ds, nil
}

func newBackend(name string, cfg Config) (Dispatcher, error) {
	switch name {
	case BackendBroadcast:
		return NewBroadcastDispatcher(cfg.Runner), nil
	case BackendCommand:
		d, err := NewCommandDispatcher(cfg.Command, cfg.Runner)
		if err != nil {
			return nil, fmt.Errorf("command dispatcher: %w", err)
		}
		return d, nil
	case BackendJellyfin:
		if cfg.JellyfinURL == "" {
			return nil, fmt.Errorf("jellyfin dispatcher: url is required")
		}
		return NewJellyfinDispatcher(cfg.JellyfinURL, cfg.JellyfinToken, nil), nil
	case BackendLog:
		return LogDispatcher{}, nil
	default:
		return nil, fmt.Errorf("unknown dispatcher: %q", name)
	}
}
