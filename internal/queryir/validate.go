package queryir

import (
	"fmt"
)

// ValidationResult contains the lint findings for a plan.
//
// Lint findings never block compilation. They flag plans that compile to
// valid text but are likely to behave differently from what the author
// expects (nondeterministic paging, cartesian products, NULL comparisons).
type ValidationResult struct {
	// Clean indicates the plan produced no warnings.
	Clean bool

	// Warnings lists the findings in plan order.
	// Empty when Clean is true.
	Warnings []string
}

// Validate lints a plan.
//
// Rules:
//  1. A plan must contain at least one clause
//  2. A read-only top-level plan should end in RETURN
//  3. SKIP and LIMIT should be paired with ORDER BY for stable paging
//  4. Unbounded variable-length relationships in MATCH are flagged
//  5. Comma-separated MATCH patterns form a cartesian product
//  6. = NULL and <> NULL are always null; IS NULL is meant
//
// Subquery and FOREACH bodies are linted recursively.
//
// Validate is a pure function with no side effects.
func Validate(plan Plan) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validatePlan(plan, "", true)

	return ValidationResult{
		Clean:    len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

// addWarning appends a warning message, prefixed with the nesting path.
func (v *validator) addWarning(scope string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if scope != "" {
		msg = scope + ": " + msg
	}
	v.warnings = append(v.warnings, msg)
}

func (v *validator) validatePlan(p Plan, scope string, topLevel bool) {
	if len(p.Clauses) == 0 {
		v.addWarning(scope, "plan has no clauses")
		return
	}

	var (
		hasReturn   bool
		hasOrder    bool
		hasMutation bool
		hasSchema   bool
	)
	for i, c := range p.Clauses {
		switch {
		case c.Kind == KindReturn:
			hasReturn = true
		case c.Kind == KindOrderBy:
			hasOrder = true
		case c.Kind == KindUnion || c.Kind == KindUnionAll || c.Kind == KindWith:
			// Each query part pages on its own.
			hasOrder = false
		}
		if c.Kind.IsMutation() {
			hasMutation = true
		}
		if c.Kind.IsSchema() {
			hasSchema = true
		}

		if (c.Kind == KindSkip || c.Kind == KindLimit) && !hasOrder && !orderFollows(p.Clauses, i) {
			v.addWarning(scope, "%s without ORDER BY returns rows in an unspecified order", c.Kind.Keyword())
		}

		if (c.Kind == KindMatch || c.Kind == KindOptionalMatch) && countPatterns(c.Args) > 1 {
			v.addWarning(scope, "%s with %d comma-separated patterns forms a cartesian product unless they share variables",
				c.Kind.Keyword(), countPatterns(c.Args))
		}

		for _, arg := range c.Args {
			v.validateArg(c.Kind, arg, scope)
		}
	}

	if topLevel && !hasReturn && !hasMutation && !hasSchema && !hasNestedMutation(p) {
		v.addWarning(scope, "read-only query has no RETURN clause")
	}
}

// orderFollows reports whether an ORDER BY appears after index i in the
// same query part. Plans are assembled in canonical order, so ORDER BY
// listed after LIMIT still precedes it in the compiled text.
func orderFollows(clauses []Clause, i int) bool {
	for _, c := range clauses[i+1:] {
		switch c.Kind {
		case KindOrderBy:
			return true
		case KindWith, KindUnion, KindUnionAll:
			return false
		}
	}
	return false
}

func countPatterns(args []Node) int {
	n := 0
	for _, a := range args {
		if _, ok := a.(PatternSource); ok {
			n++
		}
	}
	return n
}

func hasNestedMutation(p Plan) bool {
	for _, c := range p.Clauses {
		for _, arg := range c.Args {
			switch a := arg.(type) {
			case Subquery:
				if a.Plan.hasMutation() {
					return true
				}
			case Iteration:
				return true
			}
		}
	}
	return false
}

func (p Plan) hasMutation() bool {
	for _, c := range p.Clauses {
		if c.Kind.IsMutation() {
			return true
		}
	}
	return hasNestedMutation(p)
}

// validateArg recursively validates one clause argument.
func (v *validator) validateArg(kind ClauseKind, n Node, scope string) {
	switch arg := n.(type) {
	case Pattern:
		if kind == KindMatch || kind == KindOptionalMatch {
			v.validatePattern(arg, scope)
		}
	case Chain:
		if kind == KindMatch || kind == KindOptionalMatch {
			if p, err := arg.Flatten(); err == nil {
				v.validatePattern(p, scope)
			}
		}
	case Subquery:
		v.validatePlan(arg.Plan, joinScope(scope, "CALL"), false)
	case Iteration:
		v.validatePlan(arg.Body, joinScope(scope, "FOREACH"), false)
	case SortItem:
		v.validateExpr(arg.Expr, scope)
	case Assignment:
		v.validateExpr(arg.Value, scope)
	case Expr:
		v.validateExpr(arg, scope)
	}
}

// validatePattern flags unbounded traversals.
func (v *validator) validatePattern(p Pattern, scope string) {
	for _, el := range p.Elements {
		rel, ok := el.(RelPattern)
		if !ok || !rel.Length.Unbounded() {
			continue
		}
		if p.Selector.Kind != SelectNone {
			continue
		}
		name := rel.Type
		if name == "" {
			name = rel.Variable
		}
		v.addWarning(scope, "relationship %q has no upper length bound; consider a limit or a path selector", name)
	}
}

// validateExpr flags comparisons against a NULL literal.
func (v *validator) validateExpr(e Expr, scope string) {
	switch ex := e.(type) {
	case Binary:
		if ex.Op == OpEq || ex.Op == OpNeq {
			if isNullLiteral(ex.Left) || isNullLiteral(ex.Right) {
				v.addWarning(scope, "comparison %s NULL is always null; use IS NULL or IS NOT NULL", ex.Op)
			}
		}
		v.validateExpr(ex.Left, scope)
		v.validateExpr(ex.Right, scope)
	case Unary:
		v.validateExpr(ex.Operand, scope)
	case Alias:
		v.validateExpr(ex.Expr, scope)
	case Case:
		for _, b := range ex.Branches {
			v.validateExpr(b.Cond, scope)
			v.validateExpr(b.Then, scope)
		}
	case Exists:
		if ex.Where != nil {
			v.validateExpr(ex.Where, scope)
		}
	}
}

func isNullLiteral(e Expr) bool {
	lit, ok := e.(Literal)
	return ok && lit.Value == nil
}

func joinScope(scope, part string) string {
	if scope == "" {
		return part
	}
	return scope + " > " + part
}
