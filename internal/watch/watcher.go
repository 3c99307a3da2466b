// Package watch rebuilds the book whenever recipe sources change. Events
// are debounced and rebuilds are serialized: a change arriving during a
// rebuild schedules exactly one follow-up run.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/bookforge/internal/logfields"
)

// DefaultDebounce spaces rebuilds far enough apart to swallow the event
// bursts editors produce on save.
const DefaultDebounce = 2 * time.Second

// Watcher monitors a content root and triggers rebuilds.
type Watcher struct {
	root     string
	ext      string
	debounce time.Duration
	rebuild  func(context.Context) error

	watcher *fsnotify.Watcher
	trigger chan struct{}
}

// New creates a watcher over root. rebuild runs the full pipeline; its
// errors are logged, not propagated, so one broken save does not end the
// watch session.
func New(root, ext string, debounce time.Duration, rebuild func(context.Context) error) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		ext:      ext,
		debounce: debounce,
		rebuild:  rebuild,
		watcher:  fsw,
		trigger:  make(chan struct{}, 1),
	}, nil
}

// Run watches until ctx is canceled. The root and every section directory
// are watched; section directories created while watching are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addSectionWatches(); err != nil {
		return err
	}
	slog.Info("Watching for changes", logfields.Path(w.root))

	go w.eventLoop(ctx)
	w.rebuildLoop(ctx)
	return nil
}

// addSectionWatches registers the root and its current section directories.
func (w *Watcher) addSectionWatches() error {
	if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("watch content root: %w", err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("read content root: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || isSystemName(entry.Name()) {
			continue
		}
		if err := w.watcher.Add(filepath.Join(w.root, entry.Name())); err != nil {
			slog.Warn("Cannot watch section directory",
				logfields.Section(entry.Name()), logfields.Error(err))
		}
	}
	return nil
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
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
			slog.Error("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if isSystemName(name) {
		return
	}

	// A directory appearing directly under the root may be a new section.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if filepath.Dir(event.Name) == filepath.Clean(w.root) {
				if err := w.watcher.Add(event.Name); err == nil {
					slog.Debug("Watching new section directory", logfields.Path(event.Name))
				}
				w.fire()
			}
			return
		}
	}

	if !strings.HasSuffix(name, w.ext) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		slog.Debug("Source change detected", logfields.Path(event.Name))
		w.fire()
	}
}

// fire schedules a rebuild; one pending rebuild is enough.
func (w *Watcher) fire() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// rebuildLoop debounces triggers and runs rebuilds one at a time.
func (w *Watcher) rebuildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
		}

		timer := time.NewTimer(w.debounce)
	settle:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-w.trigger:
				timer.Reset(w.debounce)
			case <-timer.C:
				break settle
			}
		}

		if err := w.rebuild(ctx); err != nil {
			slog.Error("Rebuild failed", logfields.Error(err))
		}
	}
}

func isSystemName(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}
