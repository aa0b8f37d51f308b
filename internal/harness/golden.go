package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/quiver/internal/ir"
)

// Snapshot returns the golden form of a scenario outcome.
//
// A successful compilation records access_mode, param_order, params and
// text; a failed one records only error_kind, so golden files do not pin
// error wording. Fingerprints are excluded.
func Snapshot(scenarioName string, result *Result) map[string]any {
	snap := map[string]any{"scenario_name": scenarioName}
	if result.Failed() {
		snap["error_kind"] = result.ErrorKind
		return snap
	}
	q := result.Query
	order := make([]any, len(q.ParamOrder))
	for i, name := range q.ParamOrder {
		order[i] = name
	}
	snap["access_mode"] = string(q.AccessMode)
	snap["param_order"] = order
	snap["params"] = q.Parameters
	snap["text"] = q.Text
	return snap
}

// SnapshotJSON marshals Snapshot as canonical JSON.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(Snapshot(scenarioName, result))
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's snapshot against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
