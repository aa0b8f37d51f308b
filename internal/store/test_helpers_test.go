package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/quiver/internal/builder"
	"github.com/roach88/quiver/internal/querycypher"
)

// createTestStore opens a fresh catalog in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// adultsQuery compiles MATCH (p:Person) WHERE p.age > $min_age RETURN p.name.
func adultsQuery(t *testing.T, minAge any) *querycypher.CompiledQuery {
	t.Helper()
	q, err := builder.New().
		Match(builder.Pattern(builder.N("p", "Person"))).
		Where(builder.Gt(builder.Prop("p", "age"), builder.Param("min_age", minAge))).
		Return(builder.Prop("p", "name")).
		Compile()
	require.NoError(t, err)
	return q
}

// tagQuery compiles CREATE (n:Tag {name: $name}).
func tagQuery(t *testing.T, name string) *querycypher.CompiledQuery {
	t.Helper()
	q, err := builder.New().
		Create(builder.Pattern(builder.N("n", "Tag", builder.Entry("name", builder.Param("name", name))))).
		Compile()
	require.NoError(t, err)
	return q
}
