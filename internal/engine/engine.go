package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/qrorder/internal/catalog"
	"github.com/roach88/qrorder/internal/order"
)

// Engine owns an order.Session and serializes all access to it.
//
// Thread-safety model:
//   - Do and the convenience wrappers: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//   - the session is only touched inside Run
type Engine struct {
	catalog *catalog.Catalog
	session *order.Session
	queue   *taskQueue
	logger  *slog.Logger

	running atomic.Bool
	done    chan struct{}
}

// Option configures an Engine.
type Option func(*config)

type config struct {
	sessionOpts []order.Option
	logger      *slog.Logger
}

// WithSessionOptions passes options through to order.NewSession. The engine
// always supplies its own scheduler.
func WithSessionOptions(opts ...order.Option) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// WithLogger sets the logger for the engine and its session.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// New creates an engine with a fresh session over cat. Call Run to start
// processing.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	q := newTaskQueue()
	sessionOpts := append([]order.Option{order.WithLogger(cfg.logger)}, cfg.sessionOpts...)
	return &Engine{
		catalog: cat,
		session: order.NewSession(cat, &loopScheduler{queue: q}, sessionOpts...),
		queue:   q,
		logger:  cfg.logger,
		done:    make(chan struct{}),
	}
}

// Catalog returns the catalog the session sells from. Safe from any goroutine.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Run processes tasks until ctx is cancelled or Stop is called and the queue
// drains.
//
// CRITICAL: Must be called from exactly ONE goroutine, once.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return fmt.Errorf("engine: Run called more than once")
	}
	defer close(e.done)

	e.logger.Info("engine starting")
	for {
		if t, ok := e.queue.TryDequeue(); ok {
			e.logger.Debug("processing task", "task", t.name)
			t.run()
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// A closed signal channel fires immediately; stop only once the
			// remaining tasks are done.
			if e.queue.Drained() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop stops accepting work. Run returns after the queued tasks complete.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Do runs fn against the session on the Run loop and returns its error.
//
// fn must not retain the session. A panic in fn is recovered and returned as
// an error so the loop keeps running.
func (e *Engine) Do(ctx context.Context, fn func(*order.Session) error) error {
	result := make(chan error, 1)
	ok := e.queue.Enqueue(task{name: "command", run: func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("command panicked", "panic", r)
				result <- fmt.Errorf("engine: command panicked: %v", r)
			}
		}()
		result <- fn(e.session)
	}})
	if !ok {
		return ErrStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	}
}

// Add puts qty units of itemID in the cart.
func (e *Engine) Add(ctx context.Context, itemID string, qty int) error {
	return e.Do(ctx, func(s *order.Session) error { return s.Add(itemID, qty) })
}

// Decrement removes one unit of itemID.
func (e *Engine) Decrement(ctx context.Context, itemID string) error {
	return e.Do(ctx, func(s *order.Session) error { return s.Decrement(itemID) })
}

// Remove deletes the line for itemID.
func (e *Engine) Remove(ctx context.Context, itemID string) error {
	return e.Do(ctx, func(s *order.Session) error { return s.Remove(itemID) })
}

// Clear empties the cart and the availability set.
func (e *Engine) Clear(ctx context.Context) error {
	return e.Do(ctx, func(s *order.Session) error {
		s.Clear()
		return nil
	})
}

// Restart discards the commitment and empties the cart.
func (e *Engine) Restart(ctx context.Context) error {
	return e.Do(ctx, func(s *order.Session) error {
		s.Restart()
		return nil
	})
}

// Commit commits the cart.
func (e *Engine) Commit(ctx context.Context) (order.Commitment, error) {
	var c order.Commitment
	err := e.Do(ctx, func(s *order.Session) error {
		var err error
		c, err = s.Commit()
		return err
	})
	return c, err
}

// MarkUnavailable marks ids as sold out.
func (e *Engine) MarkUnavailable(ctx context.Context, ids ...string) error {
	return e.Do(ctx, func(s *order.Session) error { return s.MarkUnavailable(ids...) })
}

// Verify checks a token against the current commitment.
func (e *Engine) Verify(ctx context.Context, token string) (bool, error) {
	var ok bool
	err := e.Do(ctx, func(s *order.Session) error {
		ok = s.Verify(token)
		return nil
	})
	return ok, err
}

// View returns a render-time snapshot of the session.
func (e *Engine) View(ctx context.Context) (order.View, error) {
	var v order.View
	err := e.Do(ctx, func(s *order.Session) error {
		v = s.View()
		return nil
	})
	return v, err
}
