package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualTimers struct {
	mu     sync.Mutex
	timers []*manualTimer
	delays []time.Duration
}

func (m *manualTimers) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{f: f}
	m.timers = append(m.timers, t)
	m.delays = append(m.delays, d)
	return t
}

// fireAll runs every timer callback, including stopped ones, the way a
// racing time.AfterFunc could.
func (m *manualTimers) fireAll() {
	m.mu.Lock()
	timers := append([]*manualTimer{}, m.timers...)
	m.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

func TestDebouncerCoalescesRapidTriggers(t *testing.T) {
	timers := &manualTimers{}
	var runs int
	d, err := NewDebouncer(500*time.Millisecond, func() { runs++ }, WithAfterFunc(timers.AfterFunc))
	if err != nil {
		t.Fatalf("new debouncer: %v", err)
	}
	for i := 0; i < 10; i++ {
		d.Trigger()
	}
	if len(timers.timers) != 10 {
		t.Fatalf("expected 10 scheduled timers, got %d", len(timers.timers))
	}
	for i, timer := range timers.timers[:9] {
		if !timer.stopped {
			t.Fatalf("expected timer %d cancelled by later trigger", i)
		}
	}
	if timers.delays[9] != 500*time.Millisecond {
		t.Fatalf("unexpected delay %v", timers.delays[9])
	}

	timers.fireAll()
	if runs != 1 {
		t.Fatalf("expected exactly one run, got %d", runs)
	}
	if d.Pending() {
		t.Fatal("expected nothing pending after run")
	}
	if d.Fired() != 1 {
		t.Fatalf("expected fired=1, got %d", d.Fired())
	}
}

func TestDebouncerFlushRunsPendingOnce(t *testing.T) {
	timers := &manualTimers{}
	var runs int
	d, _ := NewDebouncer(time.Second, func() { runs++ }, WithAfterFunc(timers.AfterFunc))
	if d.Flush() {
		t.Fatal("flush with nothing pending should report false")
	}
	d.Trigger()
	if !d.Flush() {
		t.Fatal("expected flush to run pending callback")
	}
	timers.fireAll()
	if runs != 1 {
		t.Fatalf("expected stale timer to be ignored after flush, runs=%d", runs)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	timers := &manualTimers{}
	var runs int
	d, _ := NewDebouncer(time.Second, func() { runs++ }, WithAfterFunc(timers.AfterFunc))
	d.Trigger()
	d.Stop()
	timers.fireAll()
	if runs != 0 {
		t.Fatalf("expected no run after stop, got %d", runs)
	}
	if d.Trigger() {
		t.Fatal("expected trigger after stop to be rejected")
	}
	if d.Flush() {
		t.Fatal("expected flush after stop to be a no-op")
	}
}

func TestDebouncerRealTimer(t *testing.T) {
	var runs int64
	done := make(chan struct{}, 4)
	d, err := NewDebouncer(30*time.Millisecond, func() {
		atomic.AddInt64(&runs, 1)
		done <- struct{}{}
	})
	if err != nil {
		t.Fatalf("new debouncer: %v", err)
	}
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced run")
	}
	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt64(&runs); got != 1 {
		t.Fatalf("expected one run, got %d", got)
	}
}

func TestNewDebouncerValidates(t *testing.T) {
	if _, err := NewDebouncer(0, func() {}); err != ErrInvalidDelay {
		t.Fatalf("expected ErrInvalidDelay, got %v", err)
	}
	if _, err := NewDebouncer(time.Second, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestDebouncerCancelKeepsItUsable(t *testing.T) {
	timers := &manualTimers{}
	var runs int
	d, _ := NewDebouncer(time.Second, func() { runs++ }, WithAfterFunc(timers.AfterFunc))
	d.Trigger()
	if !d.Cancel() {
		t.Fatal("expected cancel to drop pending run")
	}
	timers.fireAll()
	if runs != 0 {
		t.Fatalf("expected cancelled run to be skipped, got %d", runs)
	}
	if !d.Trigger() {
		t.Fatal("expected trigger after cancel to be accepted")
	}
	d.Flush()
	if runs != 1 {
		t.Fatalf("expected one run after re-trigger, got %d", runs)
	}
}
