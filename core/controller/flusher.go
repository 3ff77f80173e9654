package controller

import (
	"sync"
	"time"

	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/fieldmask"
)

// =============================================================================
// Debounced Flusher
// =============================================================================
//
// One flusher per surface batches rapid scalar edits into a single
// outbound patch after a quiescence window. Every recorded edit resets
// the timer, so the contract is eventual consistency within one window,
// not a durable write per keystroke. An in-flight patch is never
// cancelled when newer edits arrive; the next flush simply follows it.

type flusher struct {
	window time.Duration
	emit   func(update fieldmask.Update) error

	mu      sync.Mutex
	timer   *time.Timer
	changes *fieldmask.ChangeSet
	lastErr error
	stopped bool
}

func newFlusher(window time.Duration, emit func(update fieldmask.Update) error) *flusher {
	return &flusher{
		window:  window,
		emit:    emit,
		changes: fieldmask.NewChangeSet(),
	}
}

// record notes a changed path and restarts the quiescence timer.
func (f *flusher) record(path document.Path, v document.Value) {
	f.changes.Record(path, v)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.window, f.fire)
}

// fire drains the pending changes into one patch.
func (f *flusher) fire() {
	drained := f.changes.Drain()
	if len(drained) == 0 {
		return
	}

	update, err := fieldmask.Build(drained)
	if err == nil {
		err = f.emit(update)
	}
	if err != nil {
		f.mu.Lock()
		f.lastErr = err
		f.mu.Unlock()
	}
}

// pending returns the number of mask entries waiting to flush.
func (f *flusher) pending() int {
	return f.changes.Len()
}

// takeError returns and clears the last background flush failure.
func (f *flusher) takeError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.lastErr
	f.lastErr = nil
	return err
}

// stop halts the timer and optionally flushes what is pending.
func (f *flusher) stop(flushPending bool) {
	f.mu.Lock()
	f.stopped = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.mu.Unlock()

	if flushPending {
		f.fire()
	}
}
