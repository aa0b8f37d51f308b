package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: simple_return
description: "Return every node"
plan:
  clauses:
    - match: "(n)"
    - return: n
expect:
  text: "MATCH (n) RETURN n"
  mode: read
`

const failingScenario = `name: wrong_text
plan:
  clauses:
    - match: "(n)"
    - return: n
expect:
  text: "MATCH (m) RETURN m"
`

// scenarioDirs creates <tmp>/scenarios and returns it with the sibling
// golden directory path.
func scenarioDirs(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	scenarios := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0755))
	return scenarios, filepath.Join(root, "golden")
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(NewTestCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	scenarios, _ := scenarioDirs(t)

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	scenarios, _ := scenarioDirs(t)

	out, err := execute(NewTestCommand(&RootOptions{Format: "json"}), scenarios)
	require.NoError(t, err)

	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, []ScenarioResult{}, result.Scenarios)
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	scenarios := filepath.Join("..", "harness", "testdata", "scenarios")

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenarios)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ match_where_return")
	assert.Contains(t, out, "✓ unbound_param")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandPassingWithoutGolden(t *testing.T) {
	scenarios, _ := scenarioDirs(t)
	writePlanFile(t, scenarios, "simple.yaml", passingScenario)

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ simple_return")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandFailingScenario(t *testing.T) {
	scenarios, _ := scenarioDirs(t)
	writePlanFile(t, scenarios, "simple.yaml", passingScenario)
	writePlanFile(t, scenarios, "wrong.yaml", failingScenario)

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_text")
	assert.Contains(t, out, "Assertion failed: expect.text")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	scenarios, _ := scenarioDirs(t)
	writePlanFile(t, scenarios, "wrong.yaml", failingScenario)

	out, err := execute(NewTestCommand(&RootOptions{Format: "json"}), scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	require.Len(t, result.Scenarios, 1)
	assert.False(t, result.Scenarios[0].Pass)
	assert.NotEmpty(t, result.Scenarios[0].Errors)
}

func TestTestCommandUpdateAndCompareGolden(t *testing.T) {
	scenarios, golden := scenarioDirs(t)
	writePlanFile(t, scenarios, "simple.yaml", passingScenario)

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenarios, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ simple_return (golden updated)")

	data, err := os.ReadFile(filepath.Join(golden, "simple_return.golden"))
	require.NoError(t, err)
	assert.Equal(t,
		`{"access_mode":"read","param_order":[],"params":{},"scenario_name":"simple_return","text":"MATCH (n) RETURN n"}`,
		string(data))

	_, err = execute(NewTestCommand(&RootOptions{Format: "text"}), scenarios)
	require.NoError(t, err)

	stale := `{"access_mode":"read","param_order":[],"params":{},"scenario_name":"simple_return","text":"MATCH (m) RETURN m"}`
	require.NoError(t, os.WriteFile(filepath.Join(golden, "simple_return.golden"), []byte(stale), 0644))

	out, err = execute(NewTestCommand(&RootOptions{Format: "text"}), scenarios)
	require.Error(t, err)
	assert.Contains(t, out, "snapshot does not match golden file")
}

func TestTestCommandGoldenFlag(t *testing.T) {
	scenarios, _ := scenarioDirs(t)
	writePlanFile(t, scenarios, "simple.yaml", passingScenario)
	custom := filepath.Join(t.TempDir(), "snapshots")

	_, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenarios, "--update", "--golden", custom)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(custom, "simple_return.golden"))
}

func TestTestCommandFilter(t *testing.T) {
	scenarios, _ := scenarioDirs(t)
	writePlanFile(t, scenarios, "simple.yaml", passingScenario)
	writePlanFile(t, scenarios, "wrong.yaml", failingScenario)

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenarios, "--filter", "simple*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
	assert.NotContains(t, out, "wrong_text")
}

func TestTestCommandLoadError(t *testing.T) {
	scenarios, _ := scenarioDirs(t)
	writePlanFile(t, scenarios, "broken.yaml", "name: broken\nunknown_field: true\n")

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenarios)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}
