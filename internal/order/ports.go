package order

import "time"

// Timer is a handle to one scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped a
	// callback that had not yet run.
	Stop() bool
}

// Scheduler arms delayed callbacks for a Session.
//
// The callback must run on the goroutine that owns the session (or be
// otherwise serialized with session calls). See engine.Engine and
// testutil.ManualScheduler.
type Scheduler interface {
	Schedule(delay time.Duration, fire func()) Timer
}

// Selector picks which committed items a simulated stock-out takes away.
//
// candidates is non-empty and sorted. The result should be a non-empty subset
// of candidates; Session discards anything else.
type Selector interface {
	Select(candidates []string) []string
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(candidates []string) []string

// Select calls f(candidates).
func (f SelectorFunc) Select(candidates []string) []string {
	return f(candidates)
}

// TokenGenerator produces redemption tokens.
type TokenGenerator interface {
	Generate() string
}

// TokenGeneratorFunc adapts a function to TokenGenerator.
type TokenGeneratorFunc func() string

// Generate calls f().
func (f TokenGeneratorFunc) Generate() string {
	return f()
}
