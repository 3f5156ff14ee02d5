package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qrorder/internal/order"
)

// Scenario is a scripted order session with expected outcomes.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Catalog is an optional .cue catalog path. Relative paths resolve
	// against the scenario file's directory. Empty means the built-in booth.
	Catalog string `yaml:"catalog,omitempty"`

	// Delay is the stock-out delay as a Go duration string. Defaults to
	// order.DefaultStockOutDelay.
	Delay string `yaml:"delay,omitempty"`

	// Tokens are handed out to successive commits. When empty, tokens are
	// "token-1", "token-2", ...
	Tokens []string `yaml:"tokens,omitempty"`

	// Selector decides which snapshot items a stock-out takes.
	Selector SelectorSpec `yaml:"selector,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// SelectorSpec configures the stock-out selector.
//
// Mode is one of "all" (default), "first" or "ids". Mode "ids" picks IDs,
// restricted to the snapshot.
type SelectorSpec struct {
	Mode string   `yaml:"mode,omitempty"`
	IDs  []string `yaml:"ids,omitempty"`
}

// Step is one operation against the session.
type Step struct {
	// Op is the operation: add, dec, remove, clear, commit, restart,
	// soldout, advance, fire or verify.
	Op string `yaml:"op"`

	ID string `yaml:"id,omitempty"`

	// Qty defaults to 1 for add. Negative values reach the session as is.
	Qty      int      `yaml:"qty,omitempty"`
	IDs      []string `yaml:"ids,omitempty"`
	Duration string   `yaml:"duration,omitempty"`
	Token    string   `yaml:"token,omitempty"`

	// Valid is the expected Verify outcome (verify only).
	Valid *bool `yaml:"valid,omitempty"`

	// ExpectError is the error code the step must fail with. Steps without
	// it must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpAdd     = "add"
	OpDec     = "dec"
	OpRemove  = "remove"
	OpClear   = "clear"
	OpCommit  = "commit"
	OpRestart = "restart"
	OpSoldOut = "soldout"
	OpAdvance = "advance"
	OpFire    = "fire"
	OpVerify  = "verify"
)

// Assertion validates the trace or the final session state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an event of Event whose payload includes Fields
	// - "trace_order": Events appear in this order
	// - "trace_count": Event appears exactly Count times
	// - "final_state": compare the final session view
	Type string `yaml:"type"`

	// Event is an event type such as "Committed" (trace_contains, trace_count).
	Event string `yaml:"event,omitempty"`

	// Fields are expected payload values (trace_contains). Subset match.
	Fields map[string]any `yaml:"fields,omitempty"`

	// Events is the expected order (trace_order). Other events may intervene.
	Events []string `yaml:"events,omitempty"`

	Count int `yaml:"count,omitempty"`

	// final_state fields. Unset fields are not checked.
	Status      string         `yaml:"status,omitempty"`
	Cause       string         `yaml:"cause,omitempty"`
	Token       string         `yaml:"token,omitempty"`
	Cart        map[string]int `yaml:"cart,omitempty"`
	Unavailable []string       `yaml:"unavailable,omitempty"`
	Total       *int64         `yaml:"total,omitempty"`
	Timers      *int           `yaml:"timers,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	if scenario.Catalog != "" {
		if _, err := os.Stat(scenario.Catalog); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: catalog file not found: %s", scenario.Catalog)
		}
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject typos like "assertion:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// delay returns the configured stock-out delay.
func (s *Scenario) delay() time.Duration {
	if s.Delay == "" {
		return order.DefaultStockOutDelay
	}
	d, _ := time.ParseDuration(s.Delay) // checked by validateScenario
	return d
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Delay != "" {
		d, err := time.ParseDuration(s.Delay)
		if err != nil {
			return fmt.Errorf("delay: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("delay must be positive, got %s", s.Delay)
		}
	}

	switch s.Selector.Mode {
	case "", "all", "first":
		if len(s.Selector.IDs) > 0 {
			return fmt.Errorf("selector: ids only apply to mode \"ids\"")
		}
	case "ids":
		if len(s.Selector.IDs) == 0 {
			return fmt.Errorf("selector: ids are required for mode \"ids\"")
		}
	default:
		return fmt.Errorf("selector: unknown mode %q", s.Selector.Mode)
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case OpAdd:
		if st.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for add", index)
		}
	case OpDec, OpRemove:
		if st.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for %s", index, st.Op)
		}
	case OpSoldOut:
		if len(st.IDs) == 0 {
			return fmt.Errorf("steps[%d]: ids are required for soldout", index)
		}
	case OpAdvance:
		if st.Duration == "" {
			return fmt.Errorf("steps[%d]: duration is required for advance", index)
		}
		if _, err := time.ParseDuration(st.Duration); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case OpVerify:
		if st.Valid == nil {
			return fmt.Errorf("steps[%d]: valid is required for verify", index)
		}
	case OpClear, OpCommit, OpRestart, OpFire:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	if st.ExpectError != "" && !knownCode(st.ExpectError) {
		return fmt.Errorf("steps[%d]: unknown error code %q", index, st.ExpectError)
	}
	return nil
}

func knownCode(code string) bool {
	switch order.ErrorCode(code) {
	case order.CodeInvalidArgument, order.CodeItemUnavailable, order.CodeEmptyCart,
		order.CodeNotFound, order.CodeTokenExhausted:
		return true
	}
	return false
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Status == "" && a.Cause == "" && a.Token == "" && a.Cart == nil &&
			a.Unavailable == nil && a.Total == nil && a.Timers == nil {
			return fmt.Errorf("assertions[%d]: final_state needs at least one expectation", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
