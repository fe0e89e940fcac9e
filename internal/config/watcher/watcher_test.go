package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const eventTimeout = 2 * time.Second

func newTestWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func collect(w *Watcher) <-chan Event {
	ch := make(chan Event, 16)
	w.OnChange(func(ev Event) { ch <- ev })
	return ch
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(eventTimeout):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Operation(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestWatchReportsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smoothzoom.toml")
	if err := os.WriteFile(path, []byte("[zoom]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t, WithDebounce(0))
	events := collect(w)
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("[zoom]\nsmooth_sensitivity = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev := waitEvent(t, events)
	if ev.Path != path {
		t.Errorf("Path = %q, want %q", ev.Path, path)
	}
	if ev.Op != OpWrite && ev.Op != OpCreate {
		t.Errorf("Op = %v, want write", ev.Op)
	}
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smoothzoom.toml")

	w := newTestWatcher(t, WithDebounce(0))
	events := collect(w)
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch of a missing file failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev := waitEvent(t, events)
	if ev.Path != path {
		t.Errorf("Path = %q, want only the watched file", ev.Path)
	}
}

func TestDebounceCoalesces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smoothzoom.yaml")

	w := newTestWatcher(t, WithDebounce(100*time.Millisecond))
	events := collect(w)
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("zoom: {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ev := waitEvent(t, events)
	if ev.Op != OpCreate {
		t.Errorf("Op = %v, want create to win over writes", ev.Op)
	}

	select {
	case extra := <-events:
		t.Errorf("unexpected second event %+v", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestUnwatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.toml")

	w := newTestWatcher(t)
	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(a); err != nil {
		t.Errorf("second Watch = %v, want nil", err)
	}
	if got := w.WatchedFiles(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("WatchedFiles = %v", got)
	}

	if err := w.Unwatch(a); err != nil {
		t.Errorf("Unwatch(a) = %v", err)
	}
	if err := w.Unwatch(b); err != nil {
		t.Errorf("Unwatch(b) = %v", err)
	}
	if got := w.WatchedFiles(); len(got) != 0 {
		t.Errorf("WatchedFiles after Unwatch = %v", got)
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.Watch(filepath.Join(t.TempDir(), "missing", "smoothzoom.toml")); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestClose(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if err := w.Watch(filepath.Join(t.TempDir(), "x.toml")); err != ErrClosed {
		t.Errorf("Watch after Close = %v, want ErrClosed", err)
	}
}

func TestPanickingHandler(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smoothzoom.toml")

	w := newTestWatcher(t, WithDebounce(0))
	w.OnChange(func(Event) { panic("boom") })
	events := collect(w)
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, events)
}
