package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"rightimage/builder"
)

// PageBuilder rebuilds device variants of individual pages
type PageBuilder interface {
	PublicDir() string
	OutputDir() string
	BuildPage(ctx context.Context, path string) error
	RemovePage(path string) error
	RemoveTree(path string) error
}

// Watcher monitors the public site for page changes and rebuilds them
type Watcher struct {
	builder  PageBuilder
	debounce time.Duration
	watcher  *fsnotify.Watcher
	events   chan Event
	done     chan struct{}

	mu       sync.Mutex
	timers   map[string]*time.Timer
	dirs     map[string]struct{}
	inflight sync.WaitGroup
	started  bool
	stopped  bool
}

// Event represents a processed page change
type Event struct {
	Type     EventType
	FilePath string
	Err      error
}

// EventType represents the type of file event
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// NewWatcher creates a new page watcher
func NewWatcher(b PageBuilder, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		builder:  b,
		debounce: debounce,
		watcher:  fsWatcher,
		events:   make(chan Event, 100),
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
		dirs:     make(map[string]struct{}),
	}, nil
}

// Start watches the public directory tree. ctx is passed to rebuilds.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(ctx, w.builder.PublicDir(), false); err != nil {
		return err
	}

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()

	go w.processEvents(ctx)
	return nil
}

// addTree watches dir and all of its subdirectories. With scan set, pages
// already inside are scheduled as created, since they may have landed before
// the watch did.
func (w *Watcher) addTree(ctx context.Context, dir string, scan bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && (isHidden(path) || w.isOutput(path)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if scan && builder.IsPage(path) {
				w.schedule(ctx, fsnotify.Event{Name: path, Op: fsnotify.Create})
			}
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch folder %s: %w", path, err)
		}
		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()
		slog.Debug("watching folder", "path", path)
		return nil
	})
}

// forgetDir drops dir and its subdirectories from the watched set and
// reports whether dir was watched
func (w *Watcher) forgetDir(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.dirs[dir]; !ok {
		return false
	}
	prefix := dir + string(filepath.Separator)
	for d := range w.dirs {
		if d == dir || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
		}
	}
	return true
}

// processEvents handles fsnotify events and converts them to our event type
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if isHidden(event.Name) || w.isOutput(event.Name) {
				continue
			}

			// New directories are watched as they appear
			if event.Op&fsnotify.Create == fsnotify.Create && isDir(event.Name) {
				if err := w.addTree(ctx, event.Name, true); err != nil {
					slog.Warn("failed to watch new folder", "path", event.Name, "error", err)
				}
				continue
			}

			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.forgetDir(event.Name) {
				err := w.builder.RemoveTree(event.Name)
				if err != nil {
					slog.ErrorContext(ctx, "folder removal failed", "path", event.Name, "error", err)
				} else {
					slog.InfoContext(ctx, "folder removed", "path", event.Name)
				}
				w.emit(Event{Type: EventDeleted, FilePath: event.Name, Err: err})
				continue
			}

			if !builder.IsPage(event.Name) {
				continue
			}

			w.schedule(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

// schedule debounces rapid successive events for the same file
func (w *Watcher) schedule(ctx context.Context, event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if timer, exists := w.timers[event.Name]; exists {
		timer.Stop()
	}

	w.timers[event.Name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return
		}
		delete(w.timers, event.Name)
		w.inflight.Add(1)
		w.mu.Unlock()

		defer w.inflight.Done()
		w.handleEvent(ctx, event)
	})
}

// handleEvent rebuilds or removes a single page
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	var (
		eventType EventType
		err       error
	)

	switch {
	case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventDeleted
		err = w.builder.RemovePage(event.Name)
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreated
		err = w.builder.BuildPage(ctx, event.Name)
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventModified
		err = w.builder.BuildPage(ctx, event.Name)
	default:
		return // Ignore chmod
	}

	if err != nil {
		slog.ErrorContext(ctx, "page rebuild failed", "path", event.Name, "event", eventType, "error", err)
	} else {
		slog.InfoContext(ctx, "page rebuilt", "path", event.Name, "event", eventType)
	}

	w.emit(Event{Type: eventType, FilePath: event.Name, Err: err})
}

func (w *Watcher) emit(event Event) {
	select {
	case w.events <- event:
	default:
		slog.Warn("event channel full, dropping event", "path", event.FilePath)
	}
}

// Events returns the event channel
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher, waits for running rebuilds and closes Events
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	for name, timer := range w.timers {
		timer.Stop()
		delete(w.timers, name)
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	w.inflight.Wait()
	close(w.events)
	return err
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isOutput reports whether path lies in the output tree, which may be nested
// inside the public directory
func (w *Watcher) isOutput(path string) bool {
	out := w.builder.OutputDir()
	return path == out || strings.HasPrefix(path, out+string(filepath.Separator))
}

// isHidden skips editor temp files and dot directories
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
