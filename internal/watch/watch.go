// Package watch reloads patches when their files change. Events are batched
// over a debounce window so an editor's save burst triggers one reload.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/fsutil"
)

// DefaultDebounce is the quiet period before a batch is handed over.
const DefaultDebounce = 200 * time.Millisecond

// Handler receives the de-duplicated, sorted paths that changed.
type Handler func(ctx context.Context, changed []string)

// Watcher watches patch files with the given extension below a set of roots.
type Watcher struct {
	watcher   *fsnotify.Watcher
	extension string
	debounce  time.Duration
	handler   Handler

	// files holds the cleaned file roots, dirs the cleaned directory roots.
	files map[string]struct{}
	dirs  []string
}

// New starts watching roots. A file root is watched through its directory,
// but only changes to that file are reported; directory roots are watched
// recursively.
func New(extension string, debounce time.Duration, handler Handler, roots ...string) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch handler must not be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:   fw,
		extension: extension,
		debounce:  debounce,
		handler:   handler,
		files:     make(map[string]struct{}),
	}
	for _, root := range roots {
		if err := w.add(root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", root, err)
	}
	if !info.IsDir() {
		w.files[filepath.Clean(root)] = struct{}{}
		return w.watcher.Add(filepath.Dir(root))
	}
	w.dirs = append(w.dirs, filepath.Clean(root))
	return w.addDir(root)
}

// addDir watches root and every directory below it.
func (w *Watcher) addDir(root string) error {
	dirs, err := fsutil.FindDirs(root)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", root, err)
	}
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("cannot watch %s: %w", dir, err)
		}
	}
	return nil
}

// covers reports whether path is a file root or lies below a directory root.
func (w *Watcher) covers(path string) bool {
	path = filepath.Clean(path)
	if _, ok := w.files[path]; ok {
		return true
	}
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Run delivers batches to the handler until ctx ends, then closes the
// watcher. Pending changes are dropped on shutdown.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	logger := ctxlog.FromContext(ctx)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") || !w.covers(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDir(event.Name); err != nil {
						logger.Warn("Failed to watch new directory.", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if filepath.Ext(event.Name) != w.extension || event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)

		case <-timerC:
			timer, timerC = nil, nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			sort.Strings(changed)
			logger.Debug("Patch files changed.", "count", len(changed))
			w.handler(ctx, changed)
		}
	}
}
