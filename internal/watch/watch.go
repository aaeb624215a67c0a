// Package watch keeps annotation labels current in files edited outside an
// editor session. When a watched file changes on disk it is loaded, synced,
// and written back if any label or JSON copy was stale.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/compactlog/internal/controller"
	"github.com/dshills/compactlog/internal/host/memhost"
	"github.com/dshills/compactlog/internal/logging"
)

// DefaultDebounce is the quiet period after the last change to a file
// before it is synced.
const DefaultDebounce = 150 * time.Millisecond

// Errors returned by the watcher.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
)

// SyncFile loads path, runs one synchronization pass, and writes the file
// back if the pass changed it. It reports whether the file was written.
func SyncFile(path string, opts ...controller.Option) (bool, error) {
	ws := memhost.NewWorkspace()
	ed, err := ws.OpenFile(path)
	if err != nil {
		return false, err
	}
	ctl := controller.New(ws, opts...)
	defer ctl.Close()

	ctl.Sync()
	if _, err := ws.Drain(); err != nil {
		return false, fmt.Errorf("sync %s: %w", path, err)
	}
	return ed.Save()
}

// Watcher syncs files when they change on disk. Parent directories are
// watched so that editors that save by renaming are seen.
type Watcher struct {
	mu sync.Mutex

	fsw   *fsnotify.Watcher
	delay time.Duration
	log   *logging.Logger
	opts  []controller.Option

	files map[string]bool
	dirs  map[string]bool

	onSync func(path string, wrote bool, err error)
	closed bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is synced.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.delay = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// WithControllerOptions passes options to the controller of each sync.
func WithControllerOptions(opts ...controller.Option) Option {
	return func(w *Watcher) {
		w.opts = append(w.opts, opts...)
	}
}

// OnSync registers a callback invoked after every sync attempt.
func OnSync(fn func(path string, wrote bool, err error)) Option {
	return func(w *Watcher) {
		w.onSync = fn
	}
}

// New creates a watcher.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:   fsw,
		delay: DefaultDebounce,
		log:   logging.Nop(),
		files: make(map[string]bool),
		dirs:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("watch")
	return w, nil
}

// Add starts watching a file.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}
	if w.files[abs] {
		return ErrAlreadyWatching
	}

	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

// Files returns the watched files.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

func (w *Watcher) watching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[filepath.Clean(path)]
}

// Run processes file events until ctx is done or the watcher is closed.
// Changes to a file are coalesced until it has been quiet for the debounce
// period.
func (w *Watcher) Run(ctx context.Context) error {
	// Pending timers stop delivering once Run returns.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	due := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !w.watching(ev.Name) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if t, ok := timers[path]; ok {
				t.Reset(w.delay)
				continue
			}
			timers[path] = w.schedule(runCtx, due, path)

		case path := <-due:
			delete(timers, path)
			w.sync(path)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// schedule sends path on due once the debounce delay has passed. The send
// is abandoned when ctx is done.
func (w *Watcher) schedule(ctx context.Context, due chan<- string, path string) *time.Timer {
	return time.AfterFunc(w.delay, func() {
		select {
		case due <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) sync(path string) {
	wrote, err := SyncFile(path, w.opts...)
	log := w.log.WithField("path", path)
	switch {
	case err != nil:
		log.Error("sync failed: %v", err)
	case wrote:
		log.Info("updated stale log labels")
	default:
		log.Debug("up to date")
	}
	if w.onSync != nil {
		w.onSync(path, wrote, err)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}
