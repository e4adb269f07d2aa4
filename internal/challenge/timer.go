package challenge

import (
	"sync"
	"time"
)

// WorkoutTimer is the count-up timer for the currently open day. A single
// goroutine increments the elapsed counter once per second while running.
// Every exit path (pause, reset, day switch, shutdown) must stop that
// goroutine; leaking it across day switches is the failure mode this type
// exists to prevent.
type WorkoutTimer struct {
	mu      sync.Mutex
	day     int
	elapsed int
	running bool
	stop    chan struct{}

	// tick is overridable in tests; defaults to one second.
	tick time.Duration
}

func NewWorkoutTimer() *WorkoutTimer {
	return &WorkoutTimer{tick: time.Second}
}

// Start begins (or resumes) counting for the given day. Switching to a
// different day resets the counter first.
func (t *WorkoutTimer) Start(day int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running && t.day == day {
		return
	}
	t.stopLocked()
	if t.day != day {
		t.day = day
		t.elapsed = 0
	}
	t.running = true
	t.stop = make(chan struct{})
	go t.run(t.stop)
}

func (t *WorkoutTimer) run(stop chan struct{}) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.mu.Lock()
			t.elapsed++
			t.mu.Unlock()
		case <-stop:
			return
		}
	}
}

// Pause stops the ticking goroutine but keeps the elapsed value.
func (t *WorkoutTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Reset stops the timer and zeroes the counter.
func (t *WorkoutTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.elapsed = 0
}

// Stop is the teardown path (day switch, unmount, challenge reset). It is
// safe to call repeatedly.
func (t *WorkoutTimer) Stop() {
	t.Pause()
}

// Elapsed returns the current counter value in seconds.
func (t *WorkoutTimer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

// Running reports whether the timer is ticking, and for which day.
func (t *WorkoutTimer) Running() (bool, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running, t.day
}

func (t *WorkoutTimer) stopLocked() {
	if t.running {
		close(t.stop)
		t.running = false
	}
}
