package config

import (
	"context"
	"time"

	"github.com/dshills/autoplay/internal/config/watcher"
)

// ReloadFunc receives the result of every reload. cfg is nil when err is
// set.
type ReloadFunc func(cfg *Config, err error)

// Watch reloads the configuration at path each time the file is written and
// passes the result to fn. It blocks until ctx is cancelled. Removing or
// renaming the file away is ignored; the previous configuration stays in effect.
func Watch(ctx context.Context, path string, fn ReloadFunc) error {
	w, err := watcher.New(watcher.WithDebounce(100 * time.Millisecond))
	if err != nil {
		return err
	}
	defer w.Close()

	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			return
		}
		fn(Load(path))
	})

	if err := w.Watch(path); err != nil {
		return err
	}
	return w.Run(ctx, func(err error) { fn(nil, err) })
}
