package watch

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dwfx2pdf/internal/convert"
	"dwfx2pdf/internal/logging"
)

// Watcher subscribes to create/write events under one directory, feeds
// matching paths to the Gate, and drives the Gate's polling on a fixed timer.
type Watcher struct {
	dir      string
	interval time.Duration
	gate     *Gate
	logger   *slog.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher constructs a watcher over dir. Stable paths are handed to
// release; threshold and interval control the Gate's debounce behaviour.
func NewWatcher(dir string, interval time.Duration, threshold int, release func(path string), logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		interval: interval,
		gate:     NewGate(threshold, release),
		logger:   logging.NewComponentLogger(logger, "watcher"),
	}
}

// Start begins watching. It returns an error when the directory cannot be
// subscribed; after a successful return the watcher runs until Stop.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.run()

	w.logger.Info("watching directory", logging.String("dir", w.dir))
	return nil
}

// Stop shuts down the event subscription and the poll timer. Conversions
// already handed to the dispatcher are unaffected.
func (w *Watcher) Stop() {
	if w.fsw == nil {
		return
	}
	close(w.done)
	w.wg.Wait()
	_ = w.fsw.Close()
	w.fsw = nil
}

// run is the single goroutine that owns the gate: event arrival and polling
// are serialized here, which is what lets the gate go lock-free.
func (w *Watcher) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch event error", logging.Error(err))
		case <-ticker.C:
			w.gate.Poll()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !convert.HasInputExtension(event.Name) {
		return
	}
	w.logger.Debug("input file activity", logging.String("path", event.Name), logging.String("op", event.Op.String()))
	w.gate.Arm(event.Name)
}
