package templates

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads template files when they change on disk.
type Watcher struct {
	reg     *Registry
	dir     string
	watcher *fsnotify.Watcher
	log     *zap.Logger

	// onReload is called after each handled event; tests hook it.
	onReload func(path string)
}

// Watch loads dir into reg and starts watching it. The directory is
// created when missing.
func Watch(reg *Registry, dir string) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create templates dir: %w", err)
	}
	if _, err := reg.LoadDir(dir); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{reg: reg, dir: dir, watcher: fw, log: reg.log}, nil
}

// Run handles file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("template watcher", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !isTemplateFile(event.Name) {
		return
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if w.reg.Forget(event.Name) {
			w.log.Info("template removed", zap.String("file", event.Name))
		}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if err := w.reg.LoadFile(event.Name); err != nil {
			// a half-written file fails here and is retried on the next write
			w.log.Warn("reload template", zap.String("file", event.Name), zap.Error(err))
			w.reg.Forget(event.Name)
		} else {
			w.log.Info("template reloaded", zap.String("file", event.Name))
		}
	default:
		return
	}
	if w.onReload != nil {
		w.onReload(event.Name)
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
