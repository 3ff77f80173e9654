package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of write events an editor emits
// when saving the config file.
const reloadDebounce = 250 * time.Millisecond

// Watch reloads the configuration whenever its file changes on disk.
// It watches the parent directory so atomic save-and-rename editors are
// picked up. Runs until Close is called; onError receives reload
// failures (the previous config stays live).
func (m *Manager) Watch(onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(m.path)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go m.watchLoop(watcher, onError)
	return nil
}

func (m *Manager) watchLoop(watcher *fsnotify.Watcher, onError func(error)) {
	defer watcher.Close()

	target := filepath.Clean(m.path)
	var timer *time.Timer

	for {
		select {
		case <-m.stopWatch:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				if err := m.Reload(); err != nil && onError != nil {
					onError(err)
				}
			})

		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
