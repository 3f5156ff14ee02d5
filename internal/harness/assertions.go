package harness

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/qrorder/internal/canon"
	"github.com/roach88/qrorder/internal/order"
)

// AssertionContext carries the final session state for final_state checks.
type AssertionContext struct {
	Final  order.View
	Timers int
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []order.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s", event.Seq, event.Type)
			if event.ItemID != "" {
				fmt.Fprintf(&buf, " %s", event.ItemID)
			}
			if event.Token != "" {
				fmt.Fprintf(&buf, " token=%s", event.Token)
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(actx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertTraceContains checks that some event of the given type carries the
// expected payload fields.
func assertTraceContains(trace []order.Event, assertion Assertion) error {
	for _, event := range trace {
		if string(event.Type) == assertion.Event && matchFields(event.Payload(), assertion.Fields) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("event %s with fields %v", assertion.Event, assertion.Fields),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that event types appear in the specified order.
// Events don't need to be consecutive.
func assertTraceOrder(trace []order.Event, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(assertion.Events) && string(event.Type) == assertion.Events[next] {
			next++
		}
	}
	if next == len(assertion.Events) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("events in order: %v", assertion.Events),
		Actual:   fmt.Sprintf("matched %v, then no %s", assertion.Events[:next], assertion.Events[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that the event type appears exactly Count times.
func assertTraceCount(trace []order.Event, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if string(event.Type) == assertion.Event {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Event),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState compares the final session view with the set fields of
// the assertion.
func assertFinalState(actx *AssertionContext, a Assertion) error {
	view := actx.Final
	fail := func(expected, actual string) error {
		return &AssertionError{Type: AssertFinalState, Expected: expected, Actual: actual}
	}

	if a.Status != "" && string(view.Commitment.Status) != a.Status {
		return fail("status "+a.Status, "status "+string(view.Commitment.Status))
	}
	if a.Cause != "" && string(view.Commitment.Cause) != a.Cause {
		return fail("cause "+a.Cause, "cause "+string(view.Commitment.Cause))
	}
	if a.Token != "" && view.Commitment.Token != a.Token {
		return fail("token "+a.Token, fmt.Sprintf("token %q", view.Commitment.Token))
	}
	if a.Cart != nil {
		got := make(map[string]int, view.Cart.Len())
		for _, line := range view.Cart.Lines() {
			got[line.ItemID] = line.Quantity
		}
		if !maps.Equal(got, a.Cart) {
			return fail(fmt.Sprintf("cart %v", a.Cart), fmt.Sprintf("cart %v", got))
		}
	}
	if a.Unavailable != nil {
		want := slices.Sorted(slices.Values(a.Unavailable))
		if !slices.Equal(view.Unavailable, want) {
			return fail(fmt.Sprintf("unavailable %v", want), fmt.Sprintf("unavailable %v", view.Unavailable))
		}
	}
	if a.Total != nil && view.Cart.Total() != *a.Total {
		return fail(fmt.Sprintf("total %d", *a.Total), fmt.Sprintf("total %d", view.Cart.Total()))
	}
	if a.Timers != nil && actx.Timers != *a.Timers {
		return fail(fmt.Sprintf("%d live timers", *a.Timers), fmt.Sprintf("%d live timers", actx.Timers))
	}
	return nil
}

// matchFields reports whether every expected field equals the payload's
// value. Values compare by canonical encoding, so YAML ints match int64
// sequence numbers and []any matches []string.
func matchFields(payload, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := payload[key]
		if !ok {
			return false
		}
		wantJSON, err := canon.Marshal(want)
		if err != nil {
			return false
		}
		gotJSON, err := canon.Marshal(got)
		if err != nil {
			return false
		}
		if !bytes.Equal(wantJSON, gotJSON) {
			return false
		}
	}
	return true
}
