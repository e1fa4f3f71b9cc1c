// Package watch regenerates site artifacts when post files change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	foundation "git.home.luguber.info/inful/sitekeeper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekeeper/internal/logfields"
)

// DefaultDebounce is the quiet window after the last change before a run.
const DefaultDebounce = 500 * time.Millisecond

// RegenerateFunc performs one full regeneration pass.
type RegenerateFunc func(ctx context.Context) error

// Watcher monitors the posts directory and calls a RegenerateFunc once
// changes settle.
type Watcher struct {
	dir        string
	ext        string
	ignore     map[string]struct{}
	debounce   time.Duration
	regenerate RegenerateFunc
	logger     *slog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet window. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore skips events for the given paths, typically the generated outputs.
func WithIgnore(paths ...string) Option {
	return func(w *Watcher) {
		for _, p := range paths {
			if abs, err := filepath.Abs(p); err == nil {
				w.ignore[abs] = struct{}{}
			}
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a Watcher for post files with extension ext in dir.
func New(dir, ext string, regenerate RegenerateFunc, opts ...Option) (*Watcher, error) {
	if regenerate == nil {
		return nil, foundation.ValidationError("regenerate function is required").Build()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryFileSystem, "failed to resolve posts directory").
			WithContext("path", dir).
			Build()
	}
	w := &Watcher{
		dir:        abs,
		ext:        ext,
		ignore:     make(map[string]struct{}),
		debounce:   DefaultDebounce,
		regenerate: regenerate,
		logger:     slog.Default(),
		ready:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Ready is closed once Run is watching the directory.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is done. Failed regenerations are logged and the
// watcher keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return foundation.WrapError(err, foundation.CategoryRuntime, "failed to create file watcher").Build()
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(cerr))
		}
	}()

	if err := fw.Add(w.dir); err != nil {
		return foundation.WrapError(err, foundation.CategoryNotFound, "failed to watch posts directory "+w.dir).
			WithContext("path", w.dir).
			Fatal().
			Build()
	}

	w.logger.Info("Watching posts directory", logfields.Path(w.dir))
	w.readyOnce.Do(func() { close(w.ready) })

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Post change detected", logfields.File(event.Name), logfields.Event(event.Op.String()))
			stopTimer(timer)
			timer.Reset(w.debounce)
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", logfields.Error(err))

		case <-fire:
			fire = nil
			if err := w.regenerate(ctx); err != nil {
				w.logger.Error("Regeneration failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if !strings.EqualFold(filepath.Ext(event.Name), w.ext) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, skip := w.ignore[abs]
	return !skip
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
