package trigger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/logger"
)

// Tail follows the JSONL detection events file appended to by the
// browser-side observer hook. Lines seen before startup establish the
// current label but are not replayed as submissions, so a restart never
// double-counts.
//
// Tail implements LabelSource: the most recent label carried by any event
// is the current raw label.
type Tail struct {
	mu        sync.RWMutex
	path      string
	watcher   *fsnotify.Watcher
	offset    int64
	lastLabel string
	events    chan Event
	stopChan  chan struct{}
}

// NewTail starts following the events file. The file may not exist yet;
// the surrounding directory must.
func NewTail(path string) (*Tail, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create events directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch events directory: %w", err)
	}

	t := &Tail{
		path:     path,
		watcher:  watcher,
		events:   make(chan Event, 100),
		stopChan: make(chan struct{}),
	}

	// Catch up on pre-existing content without emitting events.
	t.consume(false)

	go t.watchLoop()
	return t, nil
}

// Events returns the stream of submit/confirm events.
func (t *Tail) Events() <-chan Event {
	return t.events
}

// CurrentLabel returns the most recently observed raw model label.
func (t *Tail) CurrentLabel() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastLabel
}

func (t *Tail) watchLoop() {
	for {
		select {
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(t.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				t.consume(true)
			}

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("events watcher error", "error", err)

		case <-t.stopChan:
			return
		}
	}
}

// consume reads any bytes appended since the last read. When emit is false
// the lines only update the label state.
func (t *Tail) consume(emit bool) {
	f, err := os.Open(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("failed to open events file", "error", err)
		}
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.Error("failed to stat events file", "error", err)
		return
	}

	t.mu.Lock()
	// A shrunken file means it was rotated or truncated; start over.
	if info.Size() < t.offset {
		t.offset = 0
	}
	offset := t.offset
	t.mu.Unlock()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		logger.Error("failed to seek events file", "error", err)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		logger.Error("failed to read events file", "error", err)
		return
	}

	// Only consume through the last newline; a partial trailing line is
	// left for the write that completes it.
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return
	}

	for _, line := range bytes.Split(data[:end], []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			logger.Warn("skipping malformed event line", "error", err)
			continue
		}

		t.handle(ev, emit)
	}

	t.mu.Lock()
	t.offset = offset + int64(end) + 1
	t.mu.Unlock()
}

func (t *Tail) handle(ev Event, emit bool) {
	if ev.Label != "" {
		t.mu.Lock()
		t.lastLabel = ev.Label
		t.mu.Unlock()
	}

	if !emit || ev.Kind == KindModel {
		return
	}

	select {
	case t.events <- ev:
	default:
		logger.Warn("event channel full, dropping detection event", "kind", ev.Kind)
	}
}

// Close stops the watcher and the event stream.
func (t *Tail) Close() error {
	close(t.stopChan)
	return t.watcher.Close()
}
