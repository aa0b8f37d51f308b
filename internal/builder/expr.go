package builder

import "github.com/roach88/quiver/internal/queryir"

// Var references a variable.
func Var(name string) queryir.Variable {
	return queryir.Variable{Name: name}
}

// Prop is variable.key.
func Prop(variable, key string) queryir.Property {
	return queryir.Property{Target: Var(variable), Key: key}
}

// PropOf is target.key for an arbitrary target expression.
func PropOf(target queryir.Expr, key string) queryir.Property {
	return queryir.Property{Target: target, Key: key}
}

// Lit is an inline literal.
func Lit(v any) queryir.Literal {
	return queryir.Literal{Value: v}
}

// Param binds value to $name.
func Param(name string, value any) queryir.Param {
	return queryir.Param{Name: name, Value: value}
}

func binary(op queryir.BinaryOp, l, r queryir.Expr) queryir.Binary {
	return queryir.Binary{Op: op, Left: l, Right: r}
}

// Comparison, arithmetic and string operators.

func Eq(l, r queryir.Expr) queryir.Binary         { return binary(queryir.OpEq, l, r) }
func Neq(l, r queryir.Expr) queryir.Binary        { return binary(queryir.OpNeq, l, r) }
func Lt(l, r queryir.Expr) queryir.Binary         { return binary(queryir.OpLt, l, r) }
func Lte(l, r queryir.Expr) queryir.Binary        { return binary(queryir.OpLte, l, r) }
func Gt(l, r queryir.Expr) queryir.Binary         { return binary(queryir.OpGt, l, r) }
func Gte(l, r queryir.Expr) queryir.Binary        { return binary(queryir.OpGte, l, r) }
func Add(l, r queryir.Expr) queryir.Binary        { return binary(queryir.OpAdd, l, r) }
func Sub(l, r queryir.Expr) queryir.Binary        { return binary(queryir.OpSub, l, r) }
func Mul(l, r queryir.Expr) queryir.Binary        { return binary(queryir.OpMul, l, r) }
func Div(l, r queryir.Expr) queryir.Binary        { return binary(queryir.OpDiv, l, r) }
func Mod(l, r queryir.Expr) queryir.Binary        { return binary(queryir.OpMod, l, r) }
func Pow(l, r queryir.Expr) queryir.Binary        { return binary(queryir.OpPow, l, r) }
func Xor(l, r queryir.Expr) queryir.Binary        { return binary(queryir.OpXor, l, r) }
func StartsWith(l, r queryir.Expr) queryir.Binary { return binary(queryir.OpStartsWith, l, r) }
func EndsWith(l, r queryir.Expr) queryir.Binary   { return binary(queryir.OpEndsWith, l, r) }
func Contains(l, r queryir.Expr) queryir.Binary   { return binary(queryir.OpContains, l, r) }
func In(l, r queryir.Expr) queryir.Binary         { return binary(queryir.OpIn, l, r) }
func Matches(l, r queryir.Expr) queryir.Binary    { return binary(queryir.OpRegex, l, r) }

// And folds conditions left to right. A single condition is returned as is.
func And(first queryir.Expr, rest ...queryir.Expr) queryir.Expr {
	return fold(queryir.OpAnd, first, rest)
}

// Or folds conditions left to right.
func Or(first queryir.Expr, rest ...queryir.Expr) queryir.Expr {
	return fold(queryir.OpOr, first, rest)
}

func fold(op queryir.BinaryOp, first queryir.Expr, rest []queryir.Expr) queryir.Expr {
	acc := first
	for _, e := range rest {
		acc = binary(op, acc, e)
	}
	return acc
}

// Unary operators. Not renders NOT (x); IsNull renders x IS NULL.

func Not(e queryir.Expr) queryir.Unary       { return queryir.Unary{Op: queryir.OpNot, Operand: e} }
func Neg(e queryir.Expr) queryir.Unary       { return queryir.Unary{Op: queryir.OpNeg, Operand: e} }
func IsNull(e queryir.Expr) queryir.Unary    { return queryir.Unary{Op: queryir.OpIsNull, Operand: e} }
func IsNotNull(e queryir.Expr) queryir.Unary { return queryir.Unary{Op: queryir.OpIsNotNull, Operand: e} }

// Fn calls a function.
func Fn(name string, args ...queryir.Expr) queryir.FuncCall {
	return queryir.FuncCall{Name: name, Args: args}
}

// FnDistinct calls an aggregate over distinct values.
func FnDistinct(name string, args ...queryir.Expr) queryir.FuncCall {
	return queryir.FuncCall{Name: name, Args: args, Distinct: true}
}

// CountAll is count(*).
func CountAll() queryir.FuncCall {
	return Fn("count", queryir.Star{})
}

// As aliases an expression in RETURN, WITH or UNWIND.
func As(e queryir.Expr, name string) queryir.Alias {
	return queryir.Alias{Expr: e, Name: name}
}

// Star is the bare * projection item.
var Star = queryir.Star{}

// When is one CASE branch.
func When(cond, then queryir.Expr) queryir.When {
	return queryir.When{Cond: cond, Then: then}
}

// Case builds CASE WHEN ... [ELSE els] END. els may be nil.
func Case(els queryir.Expr, branches ...queryir.When) queryir.Case {
	return queryir.Case{Branches: branches, Else: els}
}

// CaseOf builds CASE subject WHEN ... [ELSE els] END.
func CaseOf(subject, els queryir.Expr, branches ...queryir.When) queryir.Case {
	return queryir.Case{Subject: subject, Branches: branches, Else: els}
}

// Exists is EXISTS { MATCH pattern [WHERE where] }. where may be nil.
func Exists(pattern queryir.PatternSource, where queryir.Expr) queryir.Exists {
	return queryir.Exists{Pattern: pattern, Where: where}
}

// List builds a list expression.
func List(items ...queryir.Expr) queryir.List {
	return queryir.List{Items: items}
}

// Entry is one map or property entry.
func Entry(key string, value queryir.Expr) queryir.MapEntry {
	return queryir.MapEntry{Key: key, Value: value}
}

// Map builds a map expression.
func Map(entries ...queryir.MapEntry) queryir.Map {
	return queryir.Map{Entries: entries}
}

// HasLabels is the label predicate variable:L1:L2.
func HasLabels(variable string, labels ...string) queryir.HasLabel {
	return queryir.HasLabel{Target: Var(variable), Labels: labels}
}

// Asc and Desc are ORDER BY items.
func Asc(e queryir.Expr) queryir.SortItem  { return queryir.SortItem{Expr: e, Order: queryir.SortAsc} }
func Desc(e queryir.Expr) queryir.SortItem { return queryir.SortItem{Expr: e, Order: queryir.SortDesc} }

// Assign is target = value.
func Assign(target, value queryir.Expr) queryir.Assignment {
	return queryir.Assignment{Target: target, Value: value}
}

// MergeProps is variable += value.
func MergeProps(variable string, value queryir.Expr) queryir.Assignment {
	return queryir.Assignment{Target: Var(variable), Value: value, Merge: true}
}

// AddLabels is variable:L1:L2 in SET or REMOVE.
func AddLabels(variable string, labels ...string) queryir.LabelAssignment {
	return queryir.LabelAssignment{Variable: variable, Labels: labels}
}
