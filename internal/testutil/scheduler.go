package testutil

import (
	"slices"
	"time"

	"github.com/roach88/qrorder/internal/order"
)

// ManualScheduler is an order.Scheduler driven by virtual time.
//
// Nothing fires until Advance moves the clock past a timer's deadline.
// Callbacks run inline on the goroutine calling Advance, which keeps the
// session single-writer. Not safe for concurrent use.
type ManualScheduler struct {
	now    time.Duration
	nextID int
	timers []*ManualTimer
	fired  int
}

// ManualTimer is the handle returned by ManualScheduler.Schedule.
type ManualTimer struct {
	s      *ManualScheduler
	id     int
	due    time.Duration
	fire   func()
	active bool
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule arms fire to run once virtual time reaches now+delay.
func (s *ManualScheduler) Schedule(delay time.Duration, fire func()) order.Timer {
	s.nextID++
	t := &ManualTimer{s: s, id: s.nextID, due: s.now + delay, fire: fire, active: true}
	s.timers = append(s.timers, t)
	return t
}

// Stop disarms the timer. It reports whether the timer was still armed.
func (t *ManualTimer) Stop() bool {
	if !t.active {
		return false
	}
	t.active = false
	t.s.drop(t)
	return true
}

// Due returns the virtual deadline.
func (t *ManualTimer) Due() time.Duration {
	return t.due
}

// Advance moves virtual time forward by d, firing due timers in deadline
// order (ties in scheduling order). Timers armed by a callback fire in the
// same call if they fall inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		t := s.next()
		if t == nil || t.due > target {
			break
		}
		s.now = t.due
		s.run(t)
	}
	s.now = target
}

// FireNext jumps to the earliest armed timer and fires it. It reports whether
// a timer fired.
func (s *ManualScheduler) FireNext() bool {
	t := s.next()
	if t == nil {
		return false
	}
	if t.due > s.now {
		s.now = t.due
	}
	s.run(t)
	return true
}

// Now returns the current virtual time.
func (s *ManualScheduler) Now() time.Duration {
	return s.now
}

// Armed returns the number of timers that have neither fired nor stopped.
func (s *ManualScheduler) Armed() int {
	return len(s.timers)
}

// Fired returns how many callbacks have run.
func (s *ManualScheduler) Fired() int {
	return s.fired
}

func (s *ManualScheduler) next() *ManualTimer {
	if len(s.timers) == 0 {
		return nil
	}
	return slices.MinFunc(s.timers, func(a, b *ManualTimer) int {
		if a.due != b.due {
			if a.due < b.due {
				return -1
			}
			return 1
		}
		return a.id - b.id
	})
}

func (s *ManualScheduler) run(t *ManualTimer) {
	t.active = false
	s.drop(t)
	s.fired++
	t.fire()
}

func (s *ManualScheduler) drop(t *ManualTimer) {
	s.timers = slices.DeleteFunc(s.timers, func(x *ManualTimer) bool { return x == t })
}
