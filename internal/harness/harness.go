package harness

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/qrorder/internal/catalog"
	"github.com/roach88/qrorder/internal/order"
	"github.com/roach88/qrorder/internal/testutil"
)

// Harness runs one scenario against a fresh session.
type Harness struct {
	session   *order.Session
	scheduler *testutil.ManualScheduler
	logger    *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario gets its own session, virtual-time scheduler and sequence
// clock, so results are reproducible.
//
// Execution flow:
//  1. Load the catalog
//  2. Build the session with the scenario's tokens and selector
//  3. Execute steps, checking expected errors
//  4. Evaluate assertions against the trace and final view
//
// Step and assertion failures are reported in the Result. The returned error
// is reserved for scenarios that cannot be run at all.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with session logs sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	cat, err := catalog.Load(scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	result := NewResult()
	scheduler := testutil.NewManualScheduler()
	h := &Harness{
		scheduler: scheduler,
		logger:    logger,
		session: order.NewSession(cat, scheduler,
			order.WithSelector(selectorFor(scenario.Selector)),
			order.WithTokenGenerator(tokensFor(scenario.Tokens)),
			order.WithStockOutDelay(scenario.delay()),
			order.WithClock(testutil.NewDeterministicClock()),
			order.WithNotifier(result),
			order.WithLogger(logger),
		),
	}

	for i, step := range scenario.Steps {
		h.executeStep(i, step, result)
	}

	result.Final = h.session.View()
	actx := &AssertionContext{
		Final:  result.Final,
		Timers: h.session.LiveTimers(),
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"events", len(result.Trace),
		"pass", result.Pass,
	)
	return result, nil
}

// executeStep applies one step and checks its outcome.
func (h *Harness) executeStep(index int, step Step, result *Result) {
	var err error
	switch step.Op {
	case OpAdd:
		qty := step.Qty
		if qty == 0 {
			qty = 1
		}
		err = h.session.Add(step.ID, qty)
	case OpDec:
		err = h.session.Decrement(step.ID)
	case OpRemove:
		err = h.session.Remove(step.ID)
	case OpClear:
		h.session.Clear()
	case OpRestart:
		h.session.Restart()
	case OpCommit:
		var c order.Commitment
		c, err = h.session.Commit()
		if err == nil {
			result.Tokens = append(result.Tokens, c.Token)
		}
	case OpSoldOut:
		err = h.session.MarkUnavailable(step.IDs...)
	case OpAdvance:
		d, _ := time.ParseDuration(step.Duration)
		h.scheduler.Advance(d)
	case OpFire:
		if !h.scheduler.FireNext() {
			result.AddError(fmt.Sprintf("steps[%d]: fire: no timer armed", index))
		}
	case OpVerify:
		if got := h.session.Verify(step.Token); got != *step.Valid {
			result.AddError(fmt.Sprintf("steps[%d]: verify %q = %v, want %v", index, step.Token, got, *step.Valid))
		}
	}

	h.logger.Debug("step executed",
		"step", index,
		"op", step.Op,
		"error", err,
	)

	switch {
	case step.ExpectError == "" && err != nil:
		result.AddError(fmt.Sprintf("steps[%d]: %s: unexpected error: %v", index, step.Op, err))
	case step.ExpectError != "" && err == nil:
		result.AddError(fmt.Sprintf("steps[%d]: %s: expected %s, got success", index, step.Op, step.ExpectError))
	case step.ExpectError != "" && string(order.CodeOf(err)) != step.ExpectError:
		result.AddError(fmt.Sprintf("steps[%d]: %s: expected %s, got %v", index, step.Op, step.ExpectError, err))
	}
}

func selectorFor(spec SelectorSpec) order.Selector {
	switch spec.Mode {
	case "first":
		return testutil.PickFirst
	case "ids":
		return testutil.PickIDs(spec.IDs...)
	default:
		return testutil.PickAll
	}
}

// tokensFor hands out tokens in order. Once the list runs out it returns ""
// so Commit fails with TOKEN_EXHAUSTED instead of panicking.
func tokensFor(tokens []string) order.TokenGenerator {
	if len(tokens) == 0 {
		return testutil.NewSequentialTokens("token")
	}
	next := 0
	return order.TokenGeneratorFunc(func() string {
		if next >= len(tokens) {
			return ""
		}
		next++
		return tokens[next-1]
	})
}
