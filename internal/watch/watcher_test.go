package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lcouto/saprobot/internal/events"
)

func TestWatcher_TriggerDebounce(t *testing.T) {
	w := New("/tmp/alterar_pedidos.csv", 20*time.Millisecond, events.NopSink{}, nil)

	// A burst of triggers inside the window collapses into one firing
	w.Trigger()
	w.Trigger()
	w.Trigger()

	select {
	case <-w.fire:
	case <-time.After(time.Second):
		t.Fatal("debounced trigger never fired")
	}

	select {
	case <-w.fire:
		t.Fatal("burst produced more than one firing")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_TriggerAfterQuietPeriod(t *testing.T) {
	w := New("/tmp/alterar_pedidos.csv", 10*time.Millisecond, events.NopSink{}, nil)

	w.Trigger()
	select {
	case <-w.fire:
	case <-time.After(time.Second):
		t.Fatal("first trigger never fired")
	}

	// A later change schedules a fresh firing
	w.Trigger()
	select {
	case <-w.fire:
	case <-time.After(time.Second):
		t.Fatal("second trigger never fired")
	}
}

func TestWatcher_Start(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alterar_pedidos.csv")
	if err := os.WriteFile(path, []byte("Pedido;Linha;NovaData\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runs := make(chan struct{}, 4)
	w := New(path, 10*time.Millisecond, events.NopSink{}, func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the directory watch time to come up
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("Pedido;Linha;NovaData\n4500012345;10;15/03/2024\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-runs:
	case <-time.After(3 * time.Second):
		t.Fatal("file change never triggered a run")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after cancellation")
	}
}

func TestWatcher_StartIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alterar_pedidos.csv")
	if err := os.WriteFile(path, []byte("Pedido;Linha;NovaData\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runs := make(chan struct{}, 4)
	w := New(path, 10*time.Millisecond, events.NopSink{}, func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "outro.csv"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-runs:
		t.Fatal("unrelated file change triggered a run")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w := New("/nonexistent/dir/alterar_pedidos.csv", 10*time.Millisecond, events.NopSink{}, nil)

	err := w.Start(context.Background())
	if err == nil {
		t.Fatal("expected error for missing watch directory")
	}
}
