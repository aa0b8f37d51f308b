package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func personMatch() Clause {
	return NewClause(KindMatch, NewPattern(NodePattern{Variable: "p", Label: "Person"}))
}

func returnP() Clause {
	return NewClause(KindReturn, Variable{Name: "p"})
}

func TestValidateCleanPlan(t *testing.T) {
	plan := Plan{Clauses: []Clause{
		personMatch(),
		NewClause(KindWhere, Binary{Op: OpGt, Left: Property{Target: Variable{Name: "p"}, Key: "age"}, Right: Param{Name: "min_age", Value: 18}}),
		returnP(),
		NewClause(KindOrderBy, SortItem{Expr: Property{Target: Variable{Name: "p"}, Key: "name"}}),
		NewClause(KindLimit, Literal{Value: 10}),
	}}

	result := Validate(plan)
	assert.True(t, result.Clean)
	assert.Empty(t, result.Warnings)
}

func TestValidateEmptyPlan(t *testing.T) {
	result := Validate(Plan{})
	assert.False(t, result.Clean)
	assert.Equal(t, []string{"plan has no clauses"}, result.Warnings)
}

func TestValidateMissingReturn(t *testing.T) {
	result := Validate(Plan{Clauses: []Clause{personMatch()}})
	assert.False(t, result.Clean)
	assert.Contains(t, result.Warnings, "read-only query has no RETURN clause")

	// Mutations do not need RETURN.
	write := Plan{Clauses: []Clause{personMatch(), NewClause(KindDetachDelete, Variable{Name: "p"})}}
	assert.True(t, Validate(write).Clean)

	// Neither does a FOREACH-only write.
	foreach := Plan{Clauses: []Clause{
		personMatch(),
		NewClause(KindForeach, Iteration{
			Variable: "x",
			List:     Param{Name: "xs", Value: []int{1}},
			Body:     Plan{Clauses: []Clause{NewClause(KindCreate, NewPattern(NodePattern{Label: "X"}))}},
		}),
	}}
	assert.True(t, Validate(foreach).Clean)
}

func TestValidatePagingWithoutOrder(t *testing.T) {
	plan := Plan{Clauses: []Clause{personMatch(), returnP(), NewClause(KindSkip, Literal{Value: 5}), NewClause(KindLimit, Literal{Value: 10})}}
	result := Validate(plan)
	assert.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "SKIP without ORDER BY")
	assert.Contains(t, result.Warnings[1], "LIMIT without ORDER BY")

	// ORDER BY listed after LIMIT still counts: assembly reorders it.
	plan = Plan{Clauses: []Clause{personMatch(), returnP(), NewClause(KindLimit, Literal{Value: 10}), NewClause(KindOrderBy, Variable{Name: "p"})}}
	assert.True(t, Validate(plan).Clean)
}

func TestValidateCartesianProduct(t *testing.T) {
	plan := Plan{Clauses: []Clause{
		NewClause(KindMatch,
			NewPattern(NodePattern{Variable: "a", Label: "A"}),
			NewPattern(NodePattern{Variable: "b", Label: "B"}),
		),
		NewClause(KindReturn, Variable{Name: "a"}, Variable{Name: "b"}),
	}}
	result := Validate(plan)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "cartesian product")
}

func TestValidateUnboundedTraversal(t *testing.T) {
	rel := RelPattern{Type: "KNOWS", Direction: Forward, Length: AtLeast(1)}
	plan := Plan{Clauses: []Clause{
		NewClause(KindMatch, NewPattern(NodePattern{Variable: "a"}, rel, NodePattern{Variable: "b"})),
		NewClause(KindReturn, Variable{Name: "b"}),
	}}
	result := Validate(plan)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `relationship "KNOWS" has no upper length bound`)

	// A path selector bounds the result set.
	plan.Clauses[0] = NewClause(KindMatch, Pattern{
		Selector: Selector{Kind: SelectShortest, K: 1},
		Elements: []PatternElement{NodePattern{Variable: "a"}, rel, NodePattern{Variable: "b"}},
	})
	assert.True(t, Validate(plan).Clean)

	// Chains are flattened before checking.
	plan.Clauses[0] = NewClause(KindMatch, Chain{Root: Link(Forward, Term("a", ""), ChainTerm{Name: "KNOWS", Length: AtLeast(0)}, Term("b", ""))})
	assert.Len(t, Validate(plan).Warnings, 1)
}

func TestValidateNullComparison(t *testing.T) {
	plan := Plan{Clauses: []Clause{
		personMatch(),
		NewClause(KindWhere, Binary{Op: OpAnd,
			Left:  Binary{Op: OpEq, Left: Property{Target: Variable{Name: "p"}, Key: "email"}, Right: Literal{Value: nil}},
			Right: Unary{Op: OpIsNull, Operand: Property{Target: Variable{Name: "p"}, Key: "phone"}},
		}),
		returnP(),
	}}
	result := Validate(plan)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "comparison = NULL is always null")
}

func TestValidateRecursesIntoSubqueries(t *testing.T) {
	inner := Plan{Clauses: []Clause{
		NewClause(KindWith, Variable{Name: "p"}),
		NewClause(KindMatch, NewPattern(NodePattern{Variable: "p"}), NewPattern(NodePattern{Variable: "q"})),
		NewClause(KindReturn, Variable{Name: "q"}),
	}}
	plan := Plan{Clauses: []Clause{
		personMatch(),
		NewClause(KindCallSubquery, Subquery{Plan: inner}),
		returnP(),
	}}
	result := Validate(plan)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "CALL: MATCH with 2 comma-separated patterns")
}
