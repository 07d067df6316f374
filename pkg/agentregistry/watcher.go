package agentregistry

import (
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces bursts of filesystem events (e.g. an editor's
// write-then-rename save sequence) into a single Reload.
const debounceWindow = 100 * time.Millisecond

// Watcher drives Registry.Reload from filesystem change notifications on
// the project and user agent directories.
type Watcher struct {
	registry *Registry
	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
}

// WatchForReload starts watching the registry's directories and reloads on
// every debounced burst of changes. Directories that do not exist are
// skipped with a warning and are not watched, even if created later,
// matching spec.md §7's "registry starts empty" fallback for a missing
// agents dir.
func WatchForReload(r *Registry) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range []string{r.projectDir, r.userDir} {
		if dir == "" {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			slog.Warn("agentregistry: not watching directory", "dir", dir, "error", err)
		}
	}

	w := &Watcher{registry: r, fsw: fsw, stopCh: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("agentregistry: watcher error", "error", err)
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				pending = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceWindow)
			}
			_ = ev
		case <-pending:
			timer = nil
			pending = nil
			if err := w.registry.Reload(); err != nil {
				slog.Error("agentregistry: reload after fs event failed", "error", err)
			}
		}
	}
}

// Close stops the watcher and releases its filesystem resources.
func (w *Watcher) Close() error {
	close(w.stopCh)
	return w.fsw.Close()
}
