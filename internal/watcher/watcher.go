// Package watcher re-runs pattern discovery when an input table changes.
package watcher

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	Debounce time.Duration // Quiet period before a change triggers a run (default: 500ms)
}

// DefaultWatchConfig returns a WatchConfig with sensible defaults.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		Debounce: 500 * time.Millisecond,
	}
}

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	Runs     int
	Failures int
	Duration time.Duration
}

// RunHandler is called with the path of a changed input file.
type RunHandler func(path string) error

// Watcher monitors input files and calls the handler after they change.
// Parent directories are watched so that editors which replace a file
// instead of writing it in place are still noticed.
//
// The handler never runs concurrently with itself. Changes that settle while
// a run is in progress are queued and handled once it returns, with repeated
// changes to the same path collapsed into one run.
type Watcher struct {
	config    *WatchConfig
	handler   RunHandler
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	targets   map[string]bool
	done      chan struct{}
	wg        sync.WaitGroup
	startTime time.Time

	queueMu sync.Mutex
	queue   []string
	queued  map[string]bool
	wake    chan struct{}

	// Statistics tracking
	mu       sync.Mutex
	runs     int
	failures int
}

// New creates a new Watcher with the given configuration.
// If config is nil, default configuration is used.
func New(config *WatchConfig, handler RunHandler) *Watcher {
	if config == nil {
		config = DefaultWatchConfig()
	}
	w := &Watcher{
		config:  config,
		handler: handler,
		targets: make(map[string]bool),
		done:    make(chan struct{}),
		queued:  make(map[string]bool),
		wake:    make(chan struct{}, 1),
	}
	w.debouncer = NewDebouncer(config.Debounce, w.enqueue)
	return w
}

// Start begins watching the given files. It returns an error if the
// watcher cannot be initialized. The watcher runs until Stop is called.
func (w *Watcher) Start(files []string) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			w.fsWatcher.Close()
			return err
		}
		w.targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.fsWatcher.Close()
			return err
		}
	}

	w.startTime = time.Now()
	w.done = make(chan struct{})

	w.wg.Add(2)
	go w.processEvents()
	go w.runLoop()

	return nil
}

// Stop shuts down the watcher and returns a summary of the session.
// Pending and queued runs are dropped; a run already in progress is
// allowed to finish before Stop returns.
func (w *Watcher) Stop() *WatchSummary {
	close(w.done)
	w.debouncer.CancelAll()
	w.wg.Wait()

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return &WatchSummary{
		Runs:     w.runs,
		Failures: w.failures,
		Duration: time.Since(w.startTime),
	}
}

// processEvents handles file system events from fsnotify.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if w.isTarget(event.Name) {
				w.debouncer.Add(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) isTarget(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return w.targets[abs]
}

// enqueue records a settled change for the run loop.
func (w *Watcher) enqueue(path string) {
	w.queueMu.Lock()
	if !w.queued[path] {
		w.queued[path] = true
		w.queue = append(w.queue, path)
	}
	w.queueMu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// next pops the oldest queued change.
func (w *Watcher) next() (string, bool) {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	if len(w.queue) == 0 {
		return "", false
	}
	path := w.queue[0]
	w.queue = w.queue[1:]
	delete(w.queued, path)
	return path, true
}

// runLoop handles queued changes one at a time until the watcher stops.
func (w *Watcher) runLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case <-w.wake:
		}

		for {
			select {
			case <-w.done:
				return
			default:
			}
			path, ok := w.next()
			if !ok {
				break
			}
			w.handleChange(path)
		}
	}
}

// handleChange runs the handler for one settled change.
func (w *Watcher) handleChange(path string) {
	var err error
	if w.handler != nil {
		err = w.handler(path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.runs++
	if err != nil {
		w.failures++
		slog.Error("watch run failed", "path", path, "error", err)
	}
}

// GetConfig returns the current watcher configuration.
func (w *Watcher) GetConfig() *WatchConfig {
	return w.config
}

// IsRunning returns true if the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	select {
	case <-w.done:
		return false
	default:
		return w.fsWatcher != nil
	}
}
