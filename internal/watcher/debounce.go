package watcher

import (
	"sync"
	"time"
)

// Debouncer delays a callback until activity for a key settles.
// Rapid events for the same key collapse into one callback fired delay
// after the last event.
type Debouncer struct {
	delay    time.Duration
	pending  map[string]*pendingCall
	callback func(key string)
	mu       sync.Mutex
}

type pendingCall struct {
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a new Debouncer with the specified delay and callback.
func NewDebouncer(delay time.Duration, callback func(key string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		pending:  make(map[string]*pendingCall),
		callback: callback,
	}
}

// Add schedules the callback for key, restarting the delay if key is
// already pending.
func (d *Debouncer) Add(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	call, exists := d.pending[key]
	if !exists {
		call = &pendingCall{}
		d.pending[key] = call
	} else {
		call.timer.Stop()
	}
	call.gen++
	gen := call.gen

	call.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// a later Add may have replaced this timer after it fired
		current, ok := d.pending[key]
		if !ok || current.gen != gen {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		if d.callback != nil {
			d.callback(key)
		}
	})
}

// Cancel drops a pending callback. If key is not pending, this is a no-op.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if call, exists := d.pending[key]; exists {
		call.timer.Stop()
		delete(d.pending, key)
	}
}

// CancelAll drops every pending callback.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, call := range d.pending {
		call.timer.Stop()
		delete(d.pending, key)
	}
}

// PendingCount returns the number of keys waiting to fire.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// IsPending returns true if key is waiting to fire.
func (d *Debouncer) IsPending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, exists := d.pending[key]
	return exists
}
