// Package watch monitors the input file and re-runs the batch when it
// changes, so a planner can drop a new file on the share and walk away.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lcouto/saprobot/internal/events"
)

// RunFunc executes one batch run.
type RunFunc func(ctx context.Context) error

// Watcher triggers runs on input-file changes, debounced so that a
// spreadsheet export writing in several chunks counts as one change.
type Watcher struct {
	path     string
	debounce time.Duration
	sink     events.Sink
	run      RunFunc

	mu    sync.Mutex
	timer *time.Timer
	fire  chan struct{}
}

// New creates a Watcher for the given input file path.
func New(path string, debounce time.Duration, sink events.Sink, run RunFunc) *Watcher {
	return &Watcher{
		path:     path,
		debounce: debounce,
		sink:     sink,
		run:      run,
		fire:     make(chan struct{}, 1),
	}
}

// Start watches until the context is cancelled. Runs are strictly
// sequential: changes arriving while a run is in flight collapse into a
// single follow-up run.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory, not the file: editors and spreadsheet exports
	// replace the file, which drops a direct file watch.
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	base := filepath.Base(w.path)
	w.sink.Log(fmt.Sprintf("👀 Observando alterações em %s", w.path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.Trigger()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.sink.Log(fmt.Sprintf("⚠️ Erro no monitoramento de arquivos: %v", err))

		case <-w.fire:
			w.sink.Log(fmt.Sprintf("📁 Arquivo alterado, iniciando execução: %s", w.path))
			if err := w.run(ctx); err != nil {
				w.sink.Log(fmt.Sprintf("❌ Execução disparada pelo arquivo falhou: %v", err))
			}
		}
	}
}

// Trigger schedules a debounced run. Repeated triggers inside the
// debounce window collapse into one.
func (w *Watcher) Trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		w.timer = nil
		w.mu.Unlock()

		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}
