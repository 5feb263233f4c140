// Package watch re-compares documents against a reference as they change
// on disk.
package watch

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const eventChannelBuffer = 256

// Operation indicates the type of file change.
type Operation string

// OpCreate, OpModify and OpDelete enumerate the change types.
const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Event is a debounced change to a watched document.
type Event struct {
	// Path is relative to the watched root, in slash form.
	Path      string
	AbsPath   string
	Operation Operation
	Hash      string
}

// Watcher watches a directory tree for changes to documents matching the
// configured globs and emits one event per changed file per debounce window.
type Watcher struct {
	config  Config
	root    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	match   matcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.RWMutex
	hashes map[string]string

	events chan Event

	droppedEvents atomic.Int64
}

// NewWatcher creates a watcher rooted at root.
func NewWatcher(config Config, root string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(config.Paths) == 0 {
		config.Paths = DefaultConfig().Paths
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		config:  config,
		root:    abs,
		watcher: fsw,
		logger:  logger,
		match:   newMatcher(abs, config.Paths, config.ExcludeDirs),
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		events:  make(chan Event, eventChannelBuffer),
	}, nil
}

// Events returns the channel of change events. It is closed when the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start records the hashes of the documents already present, so saves that
// do not change content are ignored, then begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	existing, err := Expand(w.root, w.config.Paths, w.config.ExcludeDirs)
	if err != nil {
		return err
	}
	for _, path := range existing {
		if data, err := os.ReadFile(path); err == nil {
			w.SetHash(w.match.rel(path), ContentHash(data))
		}
	}

	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Document watcher started",
		slog.String("root", w.root),
		slog.Any("paths", w.config.Paths),
		slog.Duration("debounce", w.config.GetDebounceDelay()),
		slog.Int("existing", len(existing)))
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// SetHash records the content hash for a relative path.
func (w *Watcher) SetHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

// GetHash returns the recorded content hash for a relative path.
func (w *Watcher) GetHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

// DroppedEvents returns the number of events dropped because the channel was full.
func (w *Watcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

func (w *Watcher) skipDir(path string) bool {
	if path == w.root {
		return false
	}
	base := filepath.Base(path)
	return w.match.excludes[base] || strings.HasPrefix(base, ".")
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", slog.String("path", path), slog.Any("error", err))
		} else {
			w.logger.Debug("Watching directory", slog.String("path", path))
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.config.GetDebounceDelay())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", slog.Any("error", err))

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.skipDir(path) {
				if err := w.addWatchesRecursive(path); err != nil {
					w.logger.Warn("Failed to watch new directory", slog.String("path", path), slog.Any("error", err))
				}
			}
			return
		}
	}
	if !w.match.match(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Document change detected",
		slog.String("path", w.match.rel(path)),
		slog.String("op", event.Op.String()))
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := maps.Clone(w.pending)
	clear(w.pending)
	w.pendingMu.Unlock()

	for path := range toProcess {
		if ctx.Err() != nil {
			return
		}
		rel := w.match.rel(path)
		event := Event{Path: rel, AbsPath: path}

		// A rename or remove may be followed by a recreate within the window,
		// so the file on disk decides.
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			w.hashMu.Lock()
			_, tracked := w.hashes[rel]
			delete(w.hashes, rel)
			w.hashMu.Unlock()
			if tracked {
				event.Operation = OpDelete
				w.sendEvent(event)
			}
			continue
		}
		if err != nil {
			w.logger.Warn("Failed to read file for hash check", slog.String("path", rel), slog.Any("error", err))
			continue
		}

		hash := ContentHash(content)
		old, had := w.GetHash(rel)
		if had && old == hash {
			continue
		}
		w.SetHash(rel, hash)

		event.Hash = hash
		event.Operation = OpModify
		if !had {
			event.Operation = OpCreate
		}
		w.sendEvent(event)
	}
}

func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event", slog.String("path", event.Path), slog.String("op", string(event.Operation)))
	default:
		dropped := w.droppedEvents.Add(1)
		w.logger.Warn("Event channel full, dropping event",
			slog.String("path", event.Path),
			slog.Int64("total_dropped", dropped))
	}
}
