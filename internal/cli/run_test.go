package cli

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quiver/internal/neo4jx"
	"github.com/roach88/quiver/internal/querycypher"
	"github.com/roach88/quiver/internal/queryir"
)

// fakeExecutor records executed queries and answers from a script.
type fakeExecutor struct {
	conn     ConnectionOptions
	executed []*querycypher.CompiledQuery
	results  map[string]*neo4jx.Result // by statement text
	failOn   string                    // statement text that fails
	closed   bool
}

func (f *fakeExecutor) Execute(ctx context.Context, q *querycypher.CompiledQuery) (*neo4jx.Result, error) {
	f.executed = append(f.executed, q)
	if q.Text == f.failOn {
		return nil, errors.New("Neo.ClientError.Statement.SyntaxError")
	}
	if res, ok := f.results[q.Text]; ok {
		return res, nil
	}
	return &neo4jx.Result{}, nil
}

func (f *fakeExecutor) connect(ctx context.Context, conn ConnectionOptions, logger *slog.Logger) (QueryExecutor, func(context.Context) error, error) {
	f.conn = conn
	return f, func(context.Context) error {
		f.closed = true
		return nil
	}, nil
}

const adultsText = "MATCH (p:Person) WHERE p.age > $min_age RETURN p.name AS name ORDER BY name LIMIT 10"

func TestRunExecutesPlansInOrder(t *testing.T) {
	fake := &fakeExecutor{results: map[string]*neo4jx.Result{
		adultsText: {
			Keys:    []string{"name"},
			Records: []map[string]any{{"name": "Ada"}, {"name": "Grace"}},
		},
	}}
	opts := &RunOptions{RootOptions: &RootOptions{Format: "text"}, Connect: fake.connect}

	out, err := execute(newRunCommand(opts), peoplePath(t), "--uri", "bolt://db:7687", "--database", "people")
	require.NoError(t, err)

	require.Len(t, fake.executed, 3)
	assert.Equal(t, adultsText, fake.executed[0].Text)
	assert.Equal(t, queryir.AccessRead, fake.executed[0].AccessMode)
	assert.Equal(t, queryir.AccessWrite, fake.executed[1].AccessMode)
	assert.Equal(t, map[string]any{"a": "alice", "b": "bob"}, fake.executed[1].Parameters)
	assert.True(t, fake.closed)
	assert.Equal(t, "bolt://db:7687", fake.conn.URI)
	assert.Equal(t, "neo4j", fake.conn.User)
	assert.Equal(t, "people", fake.conn.Database)

	assert.Contains(t, out, "✓ adults (read): 2 record(s)")
	assert.Contains(t, out, "  name\n")
	assert.Contains(t, out, `  "Ada"`)
	assert.Contains(t, out, "✓ befriend (write): 0 record(s)")
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	fake := &fakeExecutor{failOn: adultsText}
	opts := &RunOptions{RootOptions: &RootOptions{Format: "json"}, Connect: fake.connect}

	out, err := execute(newRunCommand(opts), peoplePath(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Len(t, fake.executed, 1)

	var result ExecutionResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeExecute, resp.Error.Code)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Executions, 1)
	assert.Contains(t, result.Executions[0].Error, "SyntaxError")
}

func TestRunPlanFilterAndParams(t *testing.T) {
	fake := &fakeExecutor{}
	opts := &RunOptions{RootOptions: &RootOptions{Format: "json"}, Connect: fake.connect}

	out, err := execute(newRunCommand(opts), peoplePath(t), "--plan", "adults", "-p", "min_age=40", "--mode", "write")
	require.NoError(t, err)

	require.Len(t, fake.executed, 1)
	assert.Equal(t, map[string]any{"min_age": 40}, fake.executed[0].Parameters)
	assert.Equal(t, queryir.AccessWrite, fake.executed[0].AccessMode)

	var result ExecutionResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, result.Executions, 1)
	assert.Equal(t, []string{}, result.Executions[0].Keys)
	assert.Equal(t, []map[string]any{}, result.Executions[0].Records)
}

func TestRunNothingExecutesWhenAPlanFails(t *testing.T) {
	fake := &fakeExecutor{}
	opts := &RunOptions{RootOptions: &RootOptions{Format: "text"}, Connect: fake.connect}
	path := writePlanFile(t, t.TempDir(), "mixed.yaml", brokenPlans)

	out, err := execute(newRunCommand(opts), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, fake.executed)
	assert.Contains(t, out, "Error [E301]")
}

func TestRunConnectError(t *testing.T) {
	connect := func(ctx context.Context, conn ConnectionOptions, logger *slog.Logger) (QueryExecutor, func(context.Context) error, error) {
		return nil, nil, errors.New("connection refused")
	}
	opts := &RunOptions{RootOptions: &RootOptions{Format: "text"}, Connect: connect}

	out, err := execute(newRunCommand(opts), peoplePath(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E501]: connection refused")
}

func TestFormatRecord(t *testing.T) {
	rec := map[string]any{"name": "Ada", "age": int64(36), "tags": []any{"x"}}
	assert.Equal(t, `"Ada" | 36 | ["x"]`, formatRecord([]string{"name", "age", "tags"}, rec))
	assert.Equal(t, "null", formatRecord([]string{"missing"}, rec))
}
