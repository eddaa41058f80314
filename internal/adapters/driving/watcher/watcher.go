// Package watcher turns filesystem changes under an upload directory into
// content-changed notifications for the resources stored there.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/learnbox/learnbox-search/internal/logger"
)

// DefaultDebounce coalesces bursts of events for one file.
const DefaultDebounce = 500 * time.Millisecond

// ContentNotifier receives the locator of a changed file.
type ContentNotifier interface {
	ContentChanged(ctx context.Context, locator string) (int, error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithFileURIs also reports each change as a file:// locator.
func WithFileURIs() Option {
	return func(w *Watcher) {
		w.fileURIs = true
	}
}

// Watcher watches a directory tree and reports created or written files.
type Watcher struct {
	root     string
	notifier ContentNotifier
	debounce time.Duration
	fileURIs bool

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// New creates a watcher rooted at dir.
func New(dir string, notifier ContentNotifier, opts ...Option) (*Watcher, error) {
	if notifier == nil {
		return nil, errors.New("watcher: notifier is required")
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watching %s: not a directory", root)
	}

	w := &Watcher{
		root:     root,
		notifier: notifier,
		debounce: DefaultDebounce,
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Run watches until ctx is cancelled. Pending notifications are dropped on exit.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.root); err != nil {
		return err
	}
	logger.Info("watching %s", w.root)

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if isNewDir(event) {
				if err := w.addTree(fsw, event.Name); err != nil {
					logger.Warn("watching new directory %s: %v", event.Name, err)
				}
				continue
			}
			if path, ok := w.handleFsEvent(event); ok {
				w.schedule(ctx, path)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: %v", err)
		}
	}
}

// handleFsEvent returns the file to report for event, if any.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if w.hidden(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// schedule reports path once no further events arrive for the debounce period.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	if t, ok := w.timers[path]; ok {
		if t.Stop() {
			t.Reset(w.debounce)
			return
		}
	}

	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		w.notify(ctx, path)
	})
	w.timers[path] = t
}

func (w *Watcher) notify(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	locators := []string{path}
	if w.fileURIs {
		locators = append(locators, "file://"+filepath.ToSlash(path))
	}

	total := 0
	for _, locator := range locators {
		n, err := w.notifier.ContentChanged(ctx, locator)
		if err != nil {
			logger.Error("content changed %s: %v", locator, err)
			continue
		}
		total += n
	}
	if total == 0 {
		logger.Debug("no catalogued resource at %s", path)
		return
	}
	logger.Info("%s changed, %d resource(s) scheduled", path, total)
}

// stop cancels pending timers and waits for running notifications.
func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func isNewDir(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

// hidden reports whether path is hidden relative to the watched root.
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	return isHidden(rel)
}

// isHidden reports whether any element of path starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
