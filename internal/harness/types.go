package harness

import "github.com/roach88/qrorder/internal/order"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every assertion
	// held.
	Pass bool `json:"pass"`

	// Trace holds every event the session emitted, in order.
	Trace []order.Event `json:"-"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the session view after the last step.
	Final order.View `json:"-"`

	// Tokens are the tokens of successful commits, in order.
	Tokens []string `json:"tokens,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []order.Event{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Notify records e in the trace.
func (r *Result) Notify(e order.Event) {
	r.Trace = append(r.Trace, e)
}

// Payloads returns the trace as payload maps.
func (r *Result) Payloads() []any {
	out := make([]any, len(r.Trace))
	for i, e := range r.Trace {
		out[i] = e.Payload()
	}
	return out
}
