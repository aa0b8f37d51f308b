package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClauseKindKeywords(t *testing.T) {
	tests := []struct {
		kind ClauseKind
		want string
	}{
		{KindMatch, "MATCH"},
		{KindOptionalMatch, "OPTIONAL MATCH"},
		{KindOnCreateSet, "ON CREATE SET"},
		{KindDetachDelete, "DETACH DELETE"},
		{KindOrderBy, "ORDER BY"},
		{KindUnionAll, "UNION ALL"},
		{KindCallSubquery, "CALL"},
		{KindLoadCsvHeaders, "LOAD CSV WITH HEADERS"},
		{KindDropConstraint, "DROP CONSTRAINT"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Keyword())
		})
	}
}

func TestAllClauseKindsHaveKeywords(t *testing.T) {
	assert.Len(t, AllClauseKinds, 27)
	for _, k := range AllClauseKinds {
		assert.True(t, k.Valid(), "kind %s", k)
	}
	assert.False(t, ClauseKind("explode").Valid())
}

func TestClauseKindIsMutation(t *testing.T) {
	mutations := map[ClauseKind]bool{
		KindCreate: true, KindMerge: true, KindSet: true, KindOnCreateSet: true,
		KindOnMatchSet: true, KindDelete: true, KindDetachDelete: true, KindRemove: true,
		KindCreateIndex: true, KindDropIndex: true, KindCreateConstraint: true, KindDropConstraint: true,
	}
	for _, k := range AllClauseKinds {
		assert.Equal(t, mutations[k], k.IsMutation(), "kind %s", k)
	}
}

func TestParseClauseKind(t *testing.T) {
	tests := []struct {
		input string
		want  ClauseKind
	}{
		{"match", KindMatch},
		{"OPTIONAL MATCH", KindOptionalMatch},
		{"optional_match", KindOptionalMatch},
		{"  order   by ", KindOrderBy},
		{"Load CSV With Headers", KindLoadCsvHeaders},
		{"call", KindCallSubquery},
		{"on_match_set", KindOnMatchSet},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClauseKind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseClauseKind("select")
	assert.Error(t, err)
}

func TestParseAccessMode(t *testing.T) {
	m, err := ParseAccessMode("READ")
	require.NoError(t, err)
	assert.Equal(t, AccessRead, m)

	m, err = ParseAccessMode(" write ")
	require.NoError(t, err)
	assert.Equal(t, AccessWrite, m)

	_, err = ParseAccessMode("admin")
	assert.Error(t, err)
}

func TestParseOperators(t *testing.T) {
	binary := map[string]BinaryOp{
		"==":          OpEq,
		"!=":          OpNeq,
		"&&":          OpAnd,
		"or":          OpOr,
		"startswith":  OpStartsWith,
		"STARTS WITH": OpStartsWith,
		"endswith":    OpEndsWith,
		"contains":    OpContains,
		"in":          OpIn,
		"matches":     OpRegex,
		"^":           OpPow,
	}
	for in, want := range binary {
		got, err := ParseBinaryOp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	unary := map[string]UnaryOp{
		"!":           OpNot,
		"not":         OpNot,
		"isnothing":   OpIsNull,
		"IS NOT NULL": OpIsNotNull,
		"-":           OpNeg,
	}
	for in, want := range unary {
		got, err := ParseUnaryOp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBinaryOp("<=>")
	assert.Error(t, err)
	_, err = ParseUnaryOp("~")
	assert.Error(t, err)

	assert.True(t, OpIsNull.IsPostfix())
	assert.False(t, OpNot.IsPostfix())
}
