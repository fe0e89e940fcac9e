// Package watcher reports changes to configuration files for live reload.
//
// Files are watched through their parent directory so that editors which
// replace a file on save (write to a temp file, then rename) are still
// seen. Bursts of events for one file are coalesced over a debounce
// period before handlers run.
package watcher

import (
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// ErrClosed is returned by operations on a closed watcher.
var ErrClosed = errors.New("watcher closed")

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the last underlying event arrived.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher monitors files for changes.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]int
	handlers []Handler
	onError  func(error)

	debounce time.Duration
	pending  map[string]*pendingEvent

	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

type pendingEvent struct {
	op    Operation
	time  time.Time
	timer *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes. Zero reports
// every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets a callback for errors reported by the OS watcher.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a watcher and starts its event loop. Close releases it.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		debounce: DefaultDebounce,
		pending:  make(map[string]*pendingEvent),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch adds a file to the watch list. The file does not need to exist
// yet; its directory does.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if !w.files[absPath] {
		return nil
	}
	delete(w.files, absPath)

	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// OnChange registers a handler for file change events. Handlers run on
// the watcher's goroutine.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// WatchedFiles returns the watched paths in sorted order.
func (w *Watcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// Close stops the watcher. Pending debounced events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	op, ok := convertOp(ev.Op)
	if !ok {
		return
	}
	path, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	if w.closed || !w.files[path] {
		w.mu.Unlock()
		return
	}
	if w.debounce == 0 {
		w.mu.Unlock()
		w.emit(Event{Path: path, Op: op, Time: time.Now()})
		return
	}
	w.queue(path, op)
	w.mu.Unlock()
}

// queue coalesces an event into the pending entry for path and restarts
// its debounce timer. Remove wins over everything; create wins over write.
// Callers hold mu.
func (w *Watcher) queue(path string, op Operation) {
	now := time.Now()
	p, exists := w.pending[path]
	if !exists {
		p = &pendingEvent{op: op}
		p.timer = time.AfterFunc(w.debounce, func() { w.flush(path) })
		w.pending[path] = p
	} else {
		switch {
		case op == OpRemove || op == OpRename:
			p.op = op
		case op == OpCreate:
			p.op = OpCreate
		case p.op == OpRemove || p.op == OpRename:
			// A write after a remove means the file is back.
			p.op = OpCreate
		}
		p.timer.Reset(w.debounce)
	}
	p.time = now
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok || w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	w.emit(Event{Path: path, Op: p.op, Time: p.time})
}

// emit calls all handlers with the event. A panicking handler does not
// stop the others.
func (w *Watcher) emit(event Event) {
	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, handler := range handlers {
		safeCall(handler, event)
	}
}

func safeCall(handler Handler, event Event) {
	defer func() {
		_ = recover()
	}()
	handler(event)
}

func convertOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}
