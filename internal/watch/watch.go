// Package watch reruns a build whenever the XML directory changes.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/phobologic/doxyfront/internal/logging"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Options configures Run.
type Options struct {
	// Debounce is how long the directory must stay quiet before a rebuild.
	Debounce time.Duration
	// IgnoreFile also triggers a rebuild when it changes, since it alters
	// which units are loaded.
	IgnoreFile string
	Logger     *slog.Logger
}

// BuildFunc runs one build.
type BuildFunc func(ctx context.Context) error

// Run builds once, then again after every burst of changes to XML units in
// dir, until ctx is done. A failed build is logged and watching continues.
func Run(ctx context.Context, dir string, opts Options, build BuildFunc) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}

	rebuild := func() {
		start := time.Now()
		if err := build(ctx); err != nil {
			log.Error("build failed", "error", err)
			return
		}
		log.Info("build finished", "duration", time.Since(start))
	}
	rebuild()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, opts.IgnoreFile) {
				continue
			}
			log.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				timer.Reset(opts.Debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case <-fire:
			fire = nil
			rebuild()
		}
	}
}

func relevant(ev fsnotify.Event, ignoreFile string) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	if ignoreFile != "" && base == filepath.Base(ignoreFile) {
		return true
	}
	return filepath.Ext(base) == ".xml"
}
