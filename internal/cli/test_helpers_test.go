package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const peoplePlans = `name: adults
params:
  min_age: 21
clauses:
  - match: "(p:Person)"
  - where: "p.age > $min_age"
  - return: ["p.name AS name"]
  - order_by: "name"
  - limit: 10
---
name: befriend
params:
  a: alice
  b: bob
clauses:
  - match: ["(x:Person {name: $a})", "(y:Person {name: $b})"]
  - merge: "(x)-[:KNOWS]->(y)"
  - on_create_set: "x.since = timestamp()"
  - return: [x, y]
---
name: names
mode: read
comprehension:
  label: Person
  projection: person.name
`

const brokenPlans = `name: ok
clauses:
  - match: "(n)"
  - return: n
---
name: broken
clauses:
  - match: "(n)"
  - return: n
  - limit: -1
`

// writePlanFile writes content to dir/name and returns the path.
func writePlanFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// peoplePath writes the people plans to a temp dir.
func peoplePath(t *testing.T) string {
	t.Helper()
	return writePlanFile(t, t.TempDir(), "people.yaml", peoplePlans)
}

// execute runs cmd with args and returns its stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeResponse decodes a JSON CLI response with its data into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status  string          `json:"status"`
		Data    json.RawMessage `json:"data"`
		Error   *CLIError       `json:"error"`
		TraceID string          `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error, TraceID: raw.TraceID}
}
