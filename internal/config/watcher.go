package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a config file whenever it changes.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(Config)
	log      *zap.SugaredLogger
	done     chan struct{}
}

// Watch calls onChange with the new configuration every time the file at path is written or replaced, until ctx ends
// or Close is called. Files that fail to load are logged and skipped.
func Watch(ctx context.Context, path string, onChange func(Config)) (*Watcher, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Editors often replace the file rather than writing it, so watch the directory
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %v: %w", path, err)
	}
	w := &Watcher{
		path:     path,
		watcher:  fw,
		onChange: onChange,
		log:      zap.S().Named("config").With("path", path),
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			w.log.Debugf("config change detected: %v", event.Op)
			cfg, err := LoadFromFile(w.path)
			if err != nil {
				w.log.Warnf("failed to reload config: %v", err)
				continue
			}
			w.onChange(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("watch error: %v", err)
		}
	}
}

// Close stops watching and waits for the watcher to finish.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
