package tlsconfig

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher rebuilds a trust context whenever its CA or CRL files change
// on disk. A reload never interrupts a live connection; the fresh
// material is picked up by the next handshake.
type Watcher struct {
	ctx *Context
	fw  *fsnotify.Watcher

	mu       sync.Mutex
	files    map[string]bool
	debounce *time.Timer
	done     chan struct{}
}

// Watch starts watching the context's trust files. Contexts with no
// file-based material (verify off, system pool, no CRL) need no watcher;
// Watch returns an error for them.
func Watch(ctx *Context) (*Watcher, error) {
	files := map[string]bool{}
	for _, p := range []string{ctx.opts.CACert, ctx.opts.CRL} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("tlsconfig: watch %s: %w", p, err)
		}
		files[abs] = true
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("tlsconfig: nothing to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: watcher: %w", err)
	}

	w := &Watcher{
		ctx:   ctx,
		fw:    fw,
		files: files,
		done:  make(chan struct{}),
	}

	// Watch parent directories so replace-by-rename is seen too.
	dirs := map[string]bool{}
	for f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			fw.Close()
			return nil, fmt.Errorf("tlsconfig: watch %s: %w", d, err)
		}
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	err := w.fw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			slog.Warn("tlsconfig: watch error", "error", err)
		}
	}
}

// scheduleReload debounces bursts of file events into one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(reloadDebounce, func() {
		if err := w.ctx.Reload(); err != nil {
			slog.Warn("tlsconfig: reload failed, keeping previous trust material", "error", err)
			return
		}
		slog.Info("tlsconfig: trust material reloaded")
	})
}
