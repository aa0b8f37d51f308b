package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quiver/internal/querycypher"
)

func compiledResult(text string, params map[string]any) *Result {
	r := NewResult()
	r.Query = &querycypher.CompiledQuery{Text: text, Parameters: params}
	return r
}

func TestAssertClauseOrder(t *testing.T) {
	text := "MATCH (n) WHERE n.x = $x RETURN n ORDER BY n.x"

	assert.NoError(t, assertClauseOrder(text, Assertion{Keywords: []string{"MATCH", "WHERE", "ORDER BY"}}))

	err := assertClauseOrder(text, Assertion{Keywords: []string{"RETURN", "WHERE"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WHERE not found after RETURN")

	err = assertClauseOrder(text, Assertion{Keywords: []string{"SKIP", "LIMIT"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing keyword: SKIP")
}

func TestAssertParam_CanonicalComparison(t *testing.T) {
	params := map[string]any{"n": int64(3), "tags": []string{"a"}}

	assert.NoError(t, assertParam(params, Assertion{Name: "n", Value: 3}))
	assert.NoError(t, assertParam(params, Assertion{Name: "tags", Value: []any{"a"}}))
	assert.Error(t, assertParam(params, Assertion{Name: "n", Value: 4}))
	assert.Error(t, assertParam(params, Assertion{Name: "missing", Value: 1}))
}

func TestEvaluateAssertions(t *testing.T) {
	result := compiledResult("MATCH (n) RETURN n", map[string]any{})

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTextContains, Text: "RETURN n"},
		{Type: AssertTextAbsent, Text: "DELETE"},
		{Type: AssertParamCount, Count: 0},
		{Type: AssertTextContains, Text: "LIMIT"},
		{Type: AssertErrorContains, Text: "boom"},
		{Type: "magic"},
	})
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "text_contains")
	assert.Contains(t, errs[1], "compilation succeeded")
	assert.Contains(t, errs[2], "unknown assertion type")
}

func TestEvaluateAssertions_FailedCompilation(t *testing.T) {
	result := NewResult()
	result.ErrorKind = ErrorKindPattern
	result.ErrorMessage = "relationship has conflicting directions"

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertErrorContains, Text: "conflicting"},
		{Type: AssertErrorContains, Text: "missing"},
		{Type: AssertTextContains, Text: "MATCH"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "error_contains")
	assert.Contains(t, errs[1], "compilation failed")
}

func TestAssertionError_IncludesStatement(t *testing.T) {
	err := &AssertionError{Type: "t", Expected: "e", Actual: "a", Text: "RETURN 1"}
	assert.Equal(t, "Assertion failed: t\n  Expected: e\n  Actual: a\n\nStatement:\n  RETURN 1", err.Error())
}
