package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/datakeeper/scanrelay/channel"
	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 500 * time.Millisecond

// DirWatcher watches directory trees via fsnotify and asks the relay to
// scan every file that is created, written, renamed or removed below
// them. Bursts of events for one path collapse into a single invocation.
type DirWatcher struct {
	ctx      context.Context
	cancel   context.CancelFunc
	roots    []string
	handler  channel.Handler
	debounce time.Duration
	watcher  *fsnotify.Watcher

	timerMu  sync.Mutex
	timerMap map[string]*time.Timer
}

func NewDirWatcher(roots []string, handler channel.Handler) *DirWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &DirWatcher{
		ctx:      ctx,
		cancel:   cancel,
		roots:    roots,
		handler:  handler,
		debounce: debounceInterval,
		timerMap: make(map[string]*time.Timer),
	}
}

func (w *DirWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	for _, root := range w.roots {
		if err := w.addTree(root); err != nil {
			watcher.Close()
			return err
		}
	}

	go w.eventLoop()
	slog.Info("DirWatcher started", "roots", w.roots)
	return nil
}

func (w *DirWatcher) Stop() {
	w.cancel()
	if w.watcher != nil {
		w.watcher.Close()
	}

	// Cancel any pending debounce timers
	w.timerMu.Lock()
	for _, timer := range w.timerMap {
		timer.Stop()
	}
	w.timerMap = make(map[string]*time.Timer)
	w.timerMu.Unlock()

	slog.Info("DirWatcher stopped")
}

// addTree watches dir and every non-hidden directory below it.
func (w *DirWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		slog.Debug("started watching directory", "path", path)
		return nil
	})
}

func (w *DirWatcher) eventLoop() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", "error", err)
		}
	}
}

func (w *DirWatcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || isHidden(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Error("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	path := event.Name
	w.timerMu.Lock()
	if timer, exists := w.timerMap[path]; exists {
		timer.Stop()
	}
	w.timerMap[path] = time.AfterFunc(w.debounce, func() {
		w.scanPath(path)
		w.timerMu.Lock()
		delete(w.timerMap, path)
		w.timerMu.Unlock()
	})
	w.timerMu.Unlock()
}

func (w *DirWatcher) scanPath(path string) {
	// Skip if watcher is stopped (timer may fire after Stop)
	if w.ctx.Err() != nil {
		return
	}

	res := w.handler.Handle(w.ctx, channel.MethodScanFile, map[string]any{channel.ArgPath: path})
	if !res.OK() {
		slog.Warn("watched file scan failed", "path", path, "kind", res.Kind, "message", res.Message)
		return
	}
	slog.Debug("watched file scanned", "path", path)
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
