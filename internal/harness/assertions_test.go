package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qrorder/internal/order"
)

func sampleTrace() []order.Event {
	return []order.Event{
		{Seq: 1, Type: order.EventAdded, ItemID: "t1", Quantity: 1},
		{Seq: 2, Type: order.EventCommitted, Token: "tok-1"},
		{Seq: 3, Type: order.EventInvalidated, Token: "tok-1", Cause: order.CauseItemsUnavailable},
		{Seq: 4, Type: order.EventStockOut, ItemIDs: []string{"t1"}, ItemNames: []string{"Uni T-shirt"}},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	tests := []struct {
		name   string
		event  string
		fields map[string]any
		ok     bool
	}{
		{"type only", "Committed", nil, true},
		{"string field", "Invalidated", map[string]any{"cause": "ItemsUnavailable"}, true},
		{"int against int64 seq", "Committed", map[string]any{"seq": 2}, true},
		{"list field", "StockOut", map[string]any{"item_ids": []any{"t1"}}, true},
		{"wrong value", "Invalidated", map[string]any{"cause": "CartChanged"}, false},
		{"missing field", "Committed", map[string]any{"cause": "None"}, false},
		{"absent type", "Restarted", nil, false},
		{"float never matches", "Added", map[string]any{"quantity": 1.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertTraceContains(trace, Assertion{Type: AssertTraceContains, Event: tt.event, Fields: tt.fields})
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ae *AssertionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, AssertTraceContains, ae.Type)
		})
	}
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Events: []string{"Added", "StockOut"}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Events: []string{"Committed", "Invalidated", "StockOut"}}))

	err := assertTraceOrder(trace, Assertion{Events: []string{"StockOut", "Invalidated"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "then no Invalidated")

	err = assertTraceOrder(trace, Assertion{Events: []string{"Restarted"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched [], then no Restarted")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Event: "Added", Count: 1}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Event: "Rejected", Count: 0}))

	err := assertTraceCount(trace, Assertion{Event: "Added", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 2 occurrences of Added")
	assert.Contains(t, err.Error(), "Actual: 1 occurrences")
}

func finalContext(t *testing.T) *AssertionContext {
	t.Helper()
	result, err := Run(&Scenario{
		Name:        "final",
		Description: "d",
		Tokens:      []string{"tok-1"},
		Selector:    SelectorSpec{Mode: "ids", IDs: []string{"a1"}},
		Steps: []Step{
			{Op: OpAdd, ID: "t1", Qty: 2},
			{Op: OpAdd, ID: "a1"},
			{Op: OpCommit},
			{Op: OpFire},
		},
		Assertions: []Assertion{{Type: AssertTraceCount, Event: "StockOut", Count: 1}},
	})
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)
	return &AssertionContext{Final: result.Final}
}

func TestAssertFinalState(t *testing.T) {
	actx := finalContext(t)

	tests := []struct {
		name    string
		a       Assertion
		wantErr string
	}{
		{"all match", Assertion{
			Status:      "Invalidated",
			Cause:       "ItemsUnavailable",
			Token:       "tok-1",
			Cart:        map[string]int{"t1": 2},
			Unavailable: []string{"a1"},
			Total:       int64Ptr(7000),
			Timers:      intPtr(0),
		}, ""},
		{"status", Assertion{Status: "Pending"}, "status Pending"},
		{"cause", Assertion{Cause: "CartChanged"}, "cause CartChanged"},
		{"token", Assertion{Token: "tok-2"}, "token tok-2"},
		{"cart", Assertion{Cart: map[string]int{"t1": 2, "a1": 1}}, "cart map"},
		{"empty cart", Assertion{Cart: map[string]int{}}, "cart map[]"},
		{"unavailable", Assertion{Unavailable: []string{}}, "unavailable []"},
		{"total", Assertion{Total: int64Ptr(7800)}, "total 7800"},
		{"timers", Assertion{Timers: intPtr(1)}, "1 live timers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertFinalState(actx, tt.a)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvaluateAssertions_CollectsAll(t *testing.T) {
	result := NewResult()
	for _, e := range sampleTrace() {
		result.Notify(e)
	}
	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Event: "Added", Count: 1},
		{Type: AssertTraceCount, Event: "Added", Count: 5},
		{Type: AssertTraceContains, Event: "Restarted"},
		{Type: "bogus"},
	}, &AssertionContext{})

	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "assertions[1]")
	assert.Contains(t, errs[1], "assertions[2]")
	assert.Contains(t, errs[2], `unknown assertion type "bogus"`)
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTraceCount,
		Expected: "1",
		Actual:   "0",
		Trace:    sampleTrace(),
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: trace_count")
	assert.Contains(t, msg, "[1] Added t1")
	assert.Contains(t, msg, "[2] Committed token=tok-1")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
