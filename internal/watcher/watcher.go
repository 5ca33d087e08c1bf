// Package watcher re-runs the strip pipeline when footprints in the input
// library change on disk.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fpstrip/internal/pipeline"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches a .pretty directory for .kicad_mod changes and pushes
// each settled file back through the pipeline for every variant.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	runner      *pipeline.Runner
	logger      *zap.Logger
	inputDir    string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	Reprocessed   int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
	LastEventType string
}

// New creates a Watcher over inputDir. debounce is the settle window for
// rapid editor saves. Stop releases the underlying filesystem handle, so a
// stopped Watcher cannot be reused; create a new one instead.
func New(inputDir string, runner *pipeline.Runner, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		watcher:     fsw,
		runner:      runner,
		logger:      logger,
		inputDir:    inputDir,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
// Starting an already-running Watcher is a no-op; starting a stopped one
// fails because its filesystem handle is closed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	if err := w.watcher.Add(w.inputDir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("Watching library", zap.String("dir", w.inputDir))

	go w.run(ctx, stopCh, doneCh)

	return nil
}

// Stop stops the watcher, waits for the event loop to exit, and closes the
// filesystem handle.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("Error closing watcher", zap.Error(err))
	}
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-stopCh:
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
			w.logger.Error("Watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.processSettled()
		}
	}
}

// handleEvent records a footprint event for debounced processing.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".kicad_mod") {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}

	w.logger.Debug("Footprint event",
		zap.String("type", eventType),
		zap.String("file", filepath.Base(event.Name)))

	w.mu.Lock()
	defer w.mu.Unlock()

	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventType = eventType

	switch eventType {
	case "create":
		w.stats.FilesCreated++
	case "modify":
		w.stats.FilesModified++
	case "delete", "rename":
		w.stats.FilesDeleted++
		// Nothing to reprocess for a file that is gone.
		delete(w.debounceMap, event.Name)
		return
	}

	w.debounceMap[event.Name] = time.Now()
}

// processSettled re-strips files whose last event is older than the
// debounce window.
func (w *Watcher) processSettled() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, t := range w.debounceMap {
		if now.Sub(t) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.reprocess(path)
	}
}

// reprocess runs one footprint through every configured variant.
func (w *Watcher) reprocess(path string) {
	w.logger.Info("Reprocessing footprint", zap.String("file", filepath.Base(path)))

	for _, v := range w.runner.Variants() {
		if _, err := w.runner.ProcessFile(path, v); err != nil {
			w.logger.Error("Failed to reprocess footprint",
				zap.String("file", path),
				zap.String("variant", v.Suffix),
				zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			return
		}
	}

	w.mu.Lock()
	w.stats.Reprocessed++
	w.mu.Unlock()
}

// GetStats returns a snapshot of the watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching returns true while the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
