package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quiver/internal/planspec"
	"github.com/roach88/quiver/internal/queryir"
	"github.com/roach88/quiver/internal/store"
)

func TestCompilePlans(t *testing.T) {
	out, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), peoplePath(t))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 3 plan(s)")
	assert.Contains(t, out, "adults (read)")
	assert.Contains(t, out, "  MATCH (p:Person) WHERE p.age > $min_age RETURN p.name AS name ORDER BY name LIMIT 10\n")
	assert.Contains(t, out, `  params: {"min_age":21}`)
	assert.Contains(t, out, "befriend (write)")
	assert.Contains(t, out, "names (read)")
}

func TestCompilePlansJSON(t *testing.T) {
	out, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), peoplePath(t))
	require.NoError(t, err)

	var result CompilationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	require.Len(t, result.Plans, 3)
	assert.Empty(t, result.Failures)

	adults := result.Plans[0]
	assert.Equal(t, "adults", adults.Name)
	assert.Equal(t, "read", adults.AccessMode)
	assert.Equal(t, []string{"min_age"}, adults.ParamOrder)
	assert.Equal(t, float64(21), adults.Parameters["min_age"])
	assert.Len(t, adults.Fingerprint, 64)
	assert.Empty(t, adults.CatalogID)

	assert.Equal(t, []string{"a", "b"}, result.Plans[1].ParamOrder)
	assert.Equal(t, "write", result.Plans[1].AccessMode)
	assert.Equal(t, []string{}, result.Plans[2].ParamOrder)
}

func TestCompileParamOverride(t *testing.T) {
	out, err := execute(NewCompileCommand(&RootOptions{Format: "json"}),
		peoplePath(t), "--plan", "adults", "--param", "min_age=30")
	require.NoError(t, err)

	var result CompilationResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Plans, 1)
	assert.Equal(t, "adults", result.Plans[0].Name)
	assert.Equal(t, float64(30), result.Plans[0].Parameters["min_age"])
}

func TestCompileSameTextSameFingerprint(t *testing.T) {
	path := peoplePath(t)

	first, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), path, "--plan", "adults")
	require.NoError(t, err)
	second, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), path, "--plan", "adults", "-p", "min_age=65")
	require.NoError(t, err)

	var a, b CompilationResult
	decodeResponse(t, first, &a)
	decodeResponse(t, second, &b)
	assert.Equal(t, a.Plans[0].Fingerprint, b.Plans[0].Fingerprint)
	assert.NotEqual(t, a.Plans[0].Parameters, b.Plans[0].Parameters)
}

func TestCompileModeOverride(t *testing.T) {
	out, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), peoplePath(t), "--mode", "write")
	require.NoError(t, err)

	var result CompilationResult
	decodeResponse(t, out, &result)
	for _, p := range result.Plans {
		assert.Equal(t, "write", p.AccessMode, p.Name)
	}
}

func TestCompilePretty(t *testing.T) {
	out, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), peoplePath(t), "--plan", "adults", "--pretty")
	require.NoError(t, err)

	assert.Contains(t, out, "  MATCH (p:Person)\n  WHERE p.age > $min_age\n  RETURN p.name AS name\n")
}

func TestCompileFailures(t *testing.T) {
	path := writePlanFile(t, t.TempDir(), "mixed.yaml", brokenPlans)

	out, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "compilation failed for 1 plan(s)")

	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, "broken\n  E301: GRAMMAR_ERROR")
	assert.Contains(t, out, "Compiled 1 other plan(s)")
	assert.Contains(t, out, "  MATCH (n) RETURN n\n")
}

func TestCompileFailuresJSON(t *testing.T) {
	path := writePlanFile(t, t.TempDir(), "mixed.yaml", brokenPlans)

	out, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var result CompilationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeGrammar, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "broken: ")

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "broken", result.Failures[0].Name)
	require.Len(t, result.Plans, 1)
	assert.Equal(t, "ok", result.Plans[0].Name)
}

func TestCompileLoadErrors(t *testing.T) {
	dir := t.TempDir()
	syntax := writePlanFile(t, dir, "syntax.yaml", "name: bad\nclauses:\n  - match: \"(p:Person\"\n")

	tests := []struct {
		name     string
		args     []string
		wantCode string
		wantMsg  string
	}{
		{"missing path", []string{filepath.Join(dir, "nope")}, planspec.ErrCodeNotFound, "plan path not found"},
		{"dsl syntax", []string{syntax}, planspec.ErrCodeSyntax, "syntax.yaml:3"},
		{"bad param flag", []string{syntax, "--param", "novalue"}, ErrCodeBadFlag, "want name=value"},
		{"unknown plan", []string{peoplePath(t), "--plan", "ghost"}, ErrCodeNotFound, "have adults, befriend, names"},
		{"bad mode", []string{peoplePath(t), "--mode", "sideways"}, ErrCodeBadFlag, "unknown access mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeResponse(t, out, nil)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMsg)
		})
	}
}

func TestCompileRecordsCatalog(t *testing.T) {
	path := peoplePath(t)
	dbPath := filepath.Join(t.TempDir(), "quiver.db")

	out, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), path, "--catalog", dbPath)
	require.NoError(t, err)

	var result CompilationResult
	decodeResponse(t, out, &result)
	for _, p := range result.Plans {
		assert.NotEmpty(t, p.CatalogID, p.Name)
	}

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	entries, err := st.ReadEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "adults", entries[0].Name)
	assert.Equal(t, path, entries[0].Source)
	assert.Equal(t, result.Plans[0].CatalogID, entries[0].ID)
	assert.Equal(t, queryir.AccessWrite, entries[1].AccessMode)
}

func TestCompileOutputFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "compiled.json")

	out, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), peoplePath(t), "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote compiled plans to "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Plans, 3)
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"n=21", "ok=true", "name=alice", "ratio=0.5", "tags=[a, b]", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n":     21,
		"ok":    true,
		"name":  "alice",
		"ratio": 0.5,
		"tags":  []any{"a", "b"},
		"empty": nil,
	}, params)

	_, err = parseParams([]string{"=1"})
	assert.Error(t, err)
	_, err = parseParams([]string{"novalue"})
	assert.Error(t, err)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeGrammar, errorCode(queryir.GrammarErrorf("", "bad")))
	assert.Equal(t, ErrCodePattern, errorCode(queryir.PatternErrorf("", "bad")))
	assert.Equal(t, planspec.ErrCodeSyntax, errorCode(&planspec.LoadError{Code: planspec.ErrCodeSyntax}))
	assert.Equal(t, ErrCodeGeneric, errorCode(os.ErrNotExist))
}
