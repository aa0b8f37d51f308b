package querycypher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quiver/internal/queryir"
)

func renderExpr(t *testing.T, e queryir.Expr) string {
	t.Helper()
	text, err := newCompilation().expr(e)
	require.NoError(t, err)
	return text
}

func v(name string) queryir.Variable { return queryir.Variable{Name: name} }

func prop(target, key string) queryir.Property {
	return queryir.Property{Target: v(target), Key: key}
}

func lit(x any) queryir.Literal { return queryir.Literal{Value: x} }

func bin(op queryir.BinaryOp, l, r queryir.Expr) queryir.Binary {
	return queryir.Binary{Op: op, Left: l, Right: r}
}

func TestExpr_OperatorMapping(t *testing.T) {
	tests := []struct {
		name string
		expr queryir.Expr
		want string
	}{
		{"eq", bin(queryir.OpEq, prop("p", "name"), lit("Ada")), "p.name = 'Ada'"},
		{"neq", bin(queryir.OpNeq, v("x"), lit(1)), "x <> 1"},
		{"gt", bin(queryir.OpGt, v("age"), lit(25)), "age > 25"},
		{"lte", bin(queryir.OpLte, v("age"), lit(25)), "age <= 25"},
		{"and", bin(queryir.OpAnd, v("a"), v("b")), "a AND b"},
		{"or", bin(queryir.OpOr, bin(queryir.OpGt, v("age"), lit(25)), v("admin")), "(age > 25 OR admin)"},
		{"xor", bin(queryir.OpXor, v("a"), v("b")), "(a XOR b)"},
		{"starts with", bin(queryir.OpStartsWith, v("s"), lit("A")), "s STARTS WITH 'A'"},
		{"ends with", bin(queryir.OpEndsWith, v("s"), lit("z")), "s ENDS WITH 'z'"},
		{"contains", bin(queryir.OpContains, v("s"), lit("mid")), "s CONTAINS 'mid'"},
		{"in", bin(queryir.OpIn, v("x"), lit([]int{1, 2})), "x IN [1, 2]"},
		{"regex", bin(queryir.OpRegex, v("s"), lit("^A.*")), "s =~ '^A.*'"},
		{"not", queryir.Unary{Op: queryir.OpNot, Operand: v("done")}, "NOT (done)"},
		{"is null", queryir.Unary{Op: queryir.OpIsNull, Operand: prop("p", "email")}, "p.email IS NULL"},
		{"is not null", queryir.Unary{Op: queryir.OpIsNotNull, Operand: prop("p", "email")}, "p.email IS NOT NULL"},
		{"neg", queryir.Unary{Op: queryir.OpNeg, Operand: v("x")}, "-x"},
		{"pow", bin(queryir.OpPow, v("x"), lit(2)), "x ^ 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderExpr(t, tt.expr))
		})
	}
}

func TestExpr_Precedence(t *testing.T) {
	tests := []struct {
		name string
		expr queryir.Expr
		want string
	}{
		{
			"and of ors keeps explicit parens",
			bin(queryir.OpAnd, bin(queryir.OpOr, v("a"), v("b")), bin(queryir.OpOr, v("c"), v("d"))),
			"(a OR b) AND (c OR d)",
		},
		{
			"nested or",
			bin(queryir.OpOr, bin(queryir.OpOr, v("a"), v("b")), v("c")),
			"((a OR b) OR c)",
		},
		{
			"and inside or needs nothing extra",
			bin(queryir.OpOr, bin(queryir.OpAnd, v("a"), v("b")), v("c")),
			"(a AND b OR c)",
		},
		{
			"sum times",
			bin(queryir.OpMul, bin(queryir.OpAdd, v("a"), v("b")), v("c")),
			"(a + b) * c",
		},
		{
			"times plus",
			bin(queryir.OpAdd, bin(queryir.OpMul, v("a"), v("b")), v("c")),
			"a * b + c",
		},
		{
			"right subtraction wraps",
			bin(queryir.OpSub, v("a"), bin(queryir.OpSub, v("b"), v("c"))),
			"a - (b - c)",
		},
		{
			"right addition chains",
			bin(queryir.OpAdd, v("a"), bin(queryir.OpAdd, v("b"), v("c"))),
			"a + b + c",
		},
		{
			"comparison of comparison wraps",
			bin(queryir.OpEq, bin(queryir.OpLt, v("a"), v("b")), lit(true)),
			"(a < b) = true",
		},
		{
			"not under comparison",
			bin(queryir.OpEq, queryir.Unary{Op: queryir.OpNot, Operand: v("a")}, v("b")),
			"(NOT (a)) = b",
		},
		{
			"not under and",
			bin(queryir.OpAnd, queryir.Unary{Op: queryir.OpNot, Operand: v("a")}, v("b")),
			"NOT (a) AND b",
		},
		{
			"neg of sum",
			queryir.Unary{Op: queryir.OpNeg, Operand: bin(queryir.OpAdd, v("a"), v("b"))},
			"-(a + b)",
		},
		{
			"neg of negative literal",
			queryir.Unary{Op: queryir.OpNeg, Operand: lit(-1)},
			"-(-1)",
		},
		{
			"is null of comparison",
			queryir.Unary{Op: queryir.OpIsNull, Operand: bin(queryir.OpEq, v("a"), v("b"))},
			"(a = b) IS NULL",
		},
		{
			"is null of sum",
			queryir.Unary{Op: queryir.OpIsNull, Operand: bin(queryir.OpAdd, v("a"), v("b"))},
			"a + b IS NULL",
		},
		{
			"and under comparison",
			bin(queryir.OpEq, bin(queryir.OpAnd, v("a"), v("b")), v("c")),
			"(a AND b) = c",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderExpr(t, tt.expr))
		})
	}
}

func TestExpr_Functions(t *testing.T) {
	assert.Equal(t, "count(p)", renderExpr(t, queryir.FuncCall{Name: "count", Args: []queryir.Expr{v("p")}}))
	assert.Equal(t, "count(*)", renderExpr(t, queryir.FuncCall{Name: "count", Args: []queryir.Expr{queryir.Star{}}}))
	assert.Equal(t, "count(DISTINCT p.name)", renderExpr(t, queryir.FuncCall{Name: "count", Args: []queryir.Expr{prop("p", "name")}, Distinct: true}))
	assert.Equal(t, "size(p.tags)", renderExpr(t, queryir.FuncCall{Name: "len", Args: []queryir.Expr{prop("p", "tags")}}))
	assert.Equal(t, "length(path)", renderExpr(t, queryir.FuncCall{Name: "length", Args: []queryir.Expr{v("path")}}))
	assert.Equal(t, "coalesce(p.nick, p.name, 'anon')", renderExpr(t, queryir.FuncCall{Name: "coalesce", Args: []queryir.Expr{prop("p", "nick"), prop("p", "name"), lit("anon")}}))
	assert.Equal(t, "apoc.coll.sum([1, 2])", renderExpr(t, queryir.FuncCall{Name: "apoc.coll.sum", Args: []queryir.Expr{lit([]int{1, 2})}}))
	assert.Equal(t, "rand()", renderExpr(t, queryir.FuncCall{Name: "rand"}))
}

func TestExpr_Case(t *testing.T) {
	generic := queryir.Case{
		Branches: []queryir.When{
			{Cond: bin(queryir.OpLt, prop("p", "age"), lit(18)), Then: lit("minor")},
			{Cond: bin(queryir.OpLt, prop("p", "age"), lit(65)), Then: lit("adult")},
		},
		Else: lit("senior"),
	}
	assert.Equal(t, "CASE WHEN p.age < 18 THEN 'minor' WHEN p.age < 65 THEN 'adult' ELSE 'senior' END", renderExpr(t, generic))

	simple := queryir.Case{
		Subject:  prop("p", "status"),
		Branches: []queryir.When{{Cond: lit("A"), Then: lit(1)}},
	}
	assert.Equal(t, "CASE p.status WHEN 'A' THEN 1 END", renderExpr(t, simple))
}

func TestExpr_Exists(t *testing.T) {
	sub := queryir.NewPattern(node("p", ""), queryir.RelPattern{Type: "OWNS", Direction: queryir.Forward}, node("", "Car"))
	exists := queryir.Exists{Pattern: sub}
	assert.Equal(t, "EXISTS { MATCH (p)-[:OWNS]->(:Car) }", renderExpr(t, exists))

	filtered := queryir.Exists{Pattern: sub, Where: bin(queryir.OpGt, prop("p", "age"), queryir.Param{Name: "age", Value: 30})}
	assert.Equal(t, "EXISTS { MATCH (p)-[:OWNS]->(:Car) WHERE p.age > $age }", renderExpr(t, filtered))

	doubleNot := queryir.Unary{Op: queryir.OpNot, Operand: queryir.Unary{Op: queryir.OpNot, Operand: exists}}
	assert.Equal(t, "NOT (NOT (EXISTS { MATCH (p)-[:OWNS]->(:Car) }))", renderExpr(t, doubleNot))
}

func TestExpr_Collections(t *testing.T) {
	list := queryir.List{Items: []queryir.Expr{prop("p", "a"), queryir.Param{Name: "b", Value: 2}}}
	assert.Equal(t, "[p.a, $b]", renderExpr(t, list))

	m := queryir.Map{Entries: []queryir.MapEntry{{Key: "z", Value: lit(1)}, {Key: "a", Value: v("x")}}}
	assert.Equal(t, "{z: 1, a: x}", renderExpr(t, m))

	assert.Equal(t, "n:Person:Admin", renderExpr(t, queryir.HasLabel{Target: v("n"), Labels: []string{"Person", "Admin"}}))
	assert.Equal(t, "`my var`.`first name`", renderExpr(t, queryir.Property{Target: v("my var"), Key: "first name"}))
}

func TestExpr_ParamsRegisterInOrder(t *testing.T) {
	c := newCompilation()
	e := bin(queryir.OpAnd,
		bin(queryir.OpGt, prop("p", "age"), queryir.Param{Name: "min", Value: 18}),
		bin(queryir.OpOr,
			bin(queryir.OpLt, prop("p", "age"), queryir.Param{Name: "max", Value: 65}),
			bin(queryir.OpEq, prop("p", "floor"), queryir.Param{Name: "min", Value: 18}),
		),
	)
	text, err := c.expr(e)
	require.NoError(t, err)
	assert.Equal(t, "p.age > $min AND (p.age < $max OR p.floor = $min)", text)
	assert.Equal(t, []string{"min", "max"}, c.params.names())
	assert.Equal(t, map[string]any{"min": 18, "max": 65}, c.params.materialize())
}

func TestExpr_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr queryir.Expr
	}{
		{"nil", nil},
		{"alias", queryir.Alias{Expr: v("x"), Name: "y"}},
		{"star", queryir.Star{}},
		{"star arg", queryir.FuncCall{Name: "sum", Args: []queryir.Expr{queryir.Star{}}}},
		{"empty case", queryir.Case{}},
		{"unknown binary", bin("<=>", v("a"), v("b"))},
		{"unknown unary", queryir.Unary{Op: "~", Operand: v("a")}},
		{"empty variable", queryir.Variable{}},
		{"empty key", queryir.Property{Target: v("p")}},
		{"nan literal", lit(struct{}{})},
		{"bad param name", queryir.Param{Name: "1bad"}},
		{"empty labels", queryir.HasLabel{Target: v("n")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCompilation().expr(tt.expr)
			require.Error(t, err)
			assert.True(t, queryir.IsGrammarError(err), "got %v", err)
		})
	}
}
