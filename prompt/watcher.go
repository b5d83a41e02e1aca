package prompt

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"promptist/logger"
)

// ownWriteGrace is how long after one of the manager's own writes file
// events are ignored.
const ownWriteGrace = 500 * time.Millisecond

// Watcher reloads a Manager when its file is changed by another process.
type Watcher struct {
	m        *Manager
	fw       *fsnotify.Watcher
	debounce time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	ownWriteAt time.Time
	onReload   func()
}

// NewWatcher watches the directory holding m's file; the file itself is
// replaced by rename on every save, which would drop a direct watch.
func NewWatcher(m *Manager, debounce time.Duration) (*Watcher, error) {
	dir := filepath.Dir(m.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "watch %s", dir)
	}

	w := &Watcher{m: m, fw: fw, debounce: debounce}
	m.OnWrite(w.markOwnWrite)
	return w, nil
}

// OnReload registers fn to run after each successful reload.
func (w *Watcher) OnReload(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

func (w *Watcher) markOwnWrite() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ownWriteAt = time.Now()
}

func (w *Watcher) isOwnWrite() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Since(w.ownWriteAt) < ownWriteGrace
}

// Run processes file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	target := filepath.Clean(w.m.Path())

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if w.isOwnWrite() {
				continue
			}
			logger.Logger.Infow("Template file changed on disk", "file", event.Name, "op", event.Op.String())
			w.scheduleReload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			logger.Logger.Warnw("Template watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	if err := w.m.Reload(); err != nil {
		logger.Logger.Warnw("Template reload failed, keeping previous list", "error", err)
		return
	}
	w.mu.Lock()
	fn := w.onReload
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.m.OnWrite(nil)
	w.fw.Close()
}
