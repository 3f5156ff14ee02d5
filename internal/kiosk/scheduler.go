package kiosk

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/qrorder/internal/order"
)

// fireMsg carries an expired stock-out timer into Update.
type fireMsg struct {
	fire func()
}

// programScheduler arms real timers whose callbacks are posted to the
// running program rather than run on the timer goroutine.
type programScheduler struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []tea.Msg
}

// attach connects the scheduler to a program. Fires posted before attach are
// delivered once it is called.
func (s *programScheduler) attach(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	queued := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(queued) > 0 {
		// Program.Send blocks until the program's loop is running.
		go func() {
			for _, msg := range queued {
				send(msg)
			}
		}()
	}
}

func (s *programScheduler) post(msg tea.Msg) {
	s.mu.Lock()
	send := s.send
	if send == nil {
		s.pending = append(s.pending, msg)
	}
	s.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (s *programScheduler) Schedule(delay time.Duration, fire func()) order.Timer {
	return time.AfterFunc(delay, func() {
		s.post(fireMsg{fire: fire})
	})
}
