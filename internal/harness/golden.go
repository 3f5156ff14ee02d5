package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qrorder/internal/canon"
)

// Snapshot renders a scenario's trace as canonical JSON:
//
//	{"scenario_name":"...","trace":[{"seq":1,"type":"Added",...},...]}
//
// The bytes are stable across runs, which makes them suitable for golden
// files.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	return canon.Marshal(map[string]any{
		"scenario_name": scenarioName,
		"trace":         result.Payloads(),
	})
}

// RunWithGolden runs scenario and checks its event trace with goldie.
// Fixtures live at testdata/golden/<name>.golden; refresh them with
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
