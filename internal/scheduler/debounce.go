package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrInvalidDelay = errors.New("scheduler: invalid debounce delay")

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Option func(*Debouncer)

func WithAfterFunc(after AfterFunc) Option {
	return func(d *Debouncer) {
		if after != nil {
			d.after = after
		}
	}
}

// Debouncer runs fn once after a quiet period following the last Trigger.
// A Trigger while a run is pending cancels it and starts the wait again, so
// at most one timer is ever outstanding. Runs never overlap.
type Debouncer struct {
	mu      sync.Mutex
	runMu   sync.Mutex
	delay   time.Duration
	fn      func()
	after   AfterFunc
	timer   Timer
	gen     uint64
	stopped bool
	fired   uint64
}

func NewDebouncer(delay time.Duration, fn func(), opts ...Option) (*Debouncer, error) {
	if delay <= 0 {
		return nil, ErrInvalidDelay
	}
	if fn == nil {
		return nil, errors.New("scheduler: nil debounce callback")
	}
	d := &Debouncer{
		delay: delay,
		fn:    fn,
		after: realAfterFunc,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Trigger (re)starts the quiet period. It reports false once stopped.
func (d *Debouncer) Trigger() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	stopTimer(d.timer)
	d.gen++
	gen := d.gen
	d.timer = d.after(d.delay, func() { d.fire(gen) })
	return true
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Flush runs the pending callback immediately, if there is one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.timer == nil || d.stopped {
		d.mu.Unlock()
		return false
	}
	stopTimer(d.timer)
	d.timer = nil
	d.gen++
	d.mu.Unlock()
	d.run()
	return true
}

// Cancel drops a pending run without executing it. The debouncer stays
// usable.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	stopTimer(d.timer)
	d.timer = nil
	d.gen++
	return true
}

// Stop cancels any pending run without executing it. Later triggers are
// ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	stopTimer(d.timer)
	d.timer = nil
	d.gen++
}

// Fired counts completed runs.
func (d *Debouncer) Fired() uint64 {
	return atomic.LoadUint64(&d.fired)
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.run()
}

func (d *Debouncer) run() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.fn()
	atomic.AddUint64(&d.fired, 1)
}

func stopTimer(timer Timer) {
	if timer == nil {
		return
	}
	timer.Stop()
}
