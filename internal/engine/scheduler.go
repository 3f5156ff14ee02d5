package engine

import (
	"log/slog"
	"time"

	"github.com/roach88/qrorder/internal/order"
)

// loopScheduler arms wall-clock timers whose callbacks run on the Run loop.
type loopScheduler struct {
	queue *taskQueue
}

type loopTimer struct {
	t *time.Timer
}

// Schedule implements order.Scheduler.
func (s *loopScheduler) Schedule(delay time.Duration, fire func()) order.Timer {
	t := time.AfterFunc(delay, func() {
		if !s.queue.Enqueue(task{name: "stock-out timer", run: fire}) {
			slog.Debug("timer fired after engine stopped")
		}
	})
	return loopTimer{t: t}
}

// Stop reports false if the callback already started, in which case the fire
// may already be queued.
func (lt loopTimer) Stop() bool {
	return lt.t.Stop()
}
