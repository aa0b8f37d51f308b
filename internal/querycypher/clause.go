package querycypher

import (
	"strings"

	"github.com/roach88/quiver/internal/queryir"
)

// fragment is one compiled clause. body is the text after the keyword so
// that consecutive SET fragments can be merged.
type fragment struct {
	kind queryir.ClauseKind
	body string
}

func (f fragment) text() string {
	if f.body == "" {
		return f.kind.Keyword()
	}
	return f.kind.Keyword() + " " + f.body
}

// clause compiles one clause. Errors carry the clause kind.
func (c *compilation) clause(cl queryir.Clause) (fragment, error) {
	body, err := c.clauseBody(cl)
	if err != nil {
		return fragment{}, queryir.WithClause(err, cl.Kind)
	}
	return fragment{kind: cl.Kind, body: body}, nil
}

func (c *compilation) clauseBody(cl queryir.Clause) (string, error) {
	args := cl.Args
	switch cl.Kind {
	case queryir.KindMatch, queryir.KindOptionalMatch, queryir.KindCreate:
		return c.patternList(args)
	case queryir.KindMerge:
		if len(args) != 1 {
			return "", queryir.GrammarErrorf("", "MERGE takes exactly one pattern, got %d", len(args))
		}
		return c.patternList(args)
	case queryir.KindWhere:
		return c.conditions(args)
	case queryir.KindReturn, queryir.KindWith:
		return c.projection(args)
	case queryir.KindSet, queryir.KindOnCreateSet, queryir.KindOnMatchSet:
		return c.assignments(args)
	case queryir.KindDelete, queryir.KindDetachDelete:
		return c.deletions(args)
	case queryir.KindRemove:
		return c.removals(args)
	case queryir.KindOrderBy:
		return c.sortItems(args)
	case queryir.KindSkip, queryir.KindLimit:
		return c.pagination(args)
	case queryir.KindUnwind:
		return c.unwind(args)
	case queryir.KindUnion, queryir.KindUnionAll:
		if len(args) != 0 {
			return "", queryir.GrammarErrorf("", "%s takes no arguments", cl.Kind.Keyword())
		}
		return "", nil
	case queryir.KindCallSubquery:
		return c.callSubquery(args)
	case queryir.KindLoadCsv, queryir.KindLoadCsvHeaders:
		return c.loadCSV(args)
	case queryir.KindForeach:
		return c.foreach(args)
	case queryir.KindCreateIndex:
		return c.createIndex(args)
	case queryir.KindCreateConstraint:
		return c.createConstraint(args)
	case queryir.KindDropIndex, queryir.KindDropConstraint:
		return c.drop(args)
	default:
		return "", queryir.GrammarErrorf("", "unknown clause kind %q", cl.Kind)
	}
}

func (c *compilation) patternList(args []queryir.Node) (string, error) {
	if len(args) == 0 {
		return "", queryir.GrammarErrorf("", "at least one pattern is required")
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		src, ok := arg.(queryir.PatternSource)
		if !ok {
			return "", queryir.GrammarErrorf("", "argument %d is %T, want a pattern", i+1, arg)
		}
		text, err := c.patternSource(src)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return strings.Join(parts, ", "), nil
}

// conditions AND-joins filter expressions.
func (c *compilation) conditions(args []queryir.Node) (string, error) {
	if len(args) == 0 {
		return "", queryir.GrammarErrorf("", "at least one condition is required")
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		e, ok := arg.(queryir.Expr)
		if !ok {
			return "", queryir.GrammarErrorf("", "argument %d is %T, want an expression", i+1, arg)
		}
		text, err := c.operand(e, precAnd)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return strings.Join(parts, " AND "), nil
}

// projection renders RETURN and WITH items: [DISTINCT] *, expr, expr AS name.
func (c *compilation) projection(args []queryir.Node) (string, error) {
	var prefix string
	items := args
	if len(items) > 0 {
		if _, ok := items[0].(queryir.Distinct); ok {
			prefix = "DISTINCT "
			items = items[1:]
		}
	}
	if len(items) == 0 {
		return "", queryir.GrammarErrorf("", "projection needs at least one item")
	}

	parts := make([]string, len(items))
	for i, arg := range items {
		switch item := arg.(type) {
		case queryir.Distinct:
			return "", queryir.GrammarErrorf("", "DISTINCT must be the first projection argument")
		case queryir.Star:
			if i != 0 {
				return "", queryir.GrammarErrorf("", "* must be the first projection item")
			}
			parts[i] = "*"
		case queryir.Alias:
			text, err := c.alias(item)
			if err != nil {
				return "", err
			}
			parts[i] = text
		case queryir.Expr:
			text, err := c.expr(item)
			if err != nil {
				return "", err
			}
			parts[i] = text
		default:
			return "", queryir.GrammarErrorf("", "argument %T is not a projection item", arg)
		}
	}
	return prefix + strings.Join(parts, ", "), nil
}

func (c *compilation) alias(a queryir.Alias) (string, error) {
	if a.Name == "" {
		return "", queryir.GrammarErrorf("", "alias has no name")
	}
	text, err := c.expr(a.Expr)
	if err != nil {
		return "", err
	}
	return text + " AS " + Identifier(a.Name), nil
}

// assignments renders SET items: target = value, target += value, n:Label.
func (c *compilation) assignments(args []queryir.Node) (string, error) {
	if len(args) == 0 {
		return "", queryir.GrammarErrorf("", "at least one assignment is required")
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		switch a := arg.(type) {
		case queryir.Assignment:
			text, err := c.assignment(a)
			if err != nil {
				return "", err
			}
			parts[i] = text
		case queryir.LabelAssignment:
			text, err := labelAssignment(a)
			if err != nil {
				return "", err
			}
			parts[i] = text
		default:
			return "", queryir.GrammarErrorf("", "argument %d is %T, want an assignment", i+1, arg)
		}
	}
	return strings.Join(parts, ", "), nil
}

func (c *compilation) assignment(a queryir.Assignment) (string, error) {
	switch a.Target.(type) {
	case queryir.Property:
		if a.Merge {
			return "", queryir.GrammarErrorf("", "+= needs a variable target, not a property")
		}
	case queryir.Variable:
	default:
		return "", queryir.GrammarErrorf("", "assignment target %T is not a property or variable", a.Target)
	}
	target, err := c.expr(a.Target)
	if err != nil {
		return "", err
	}
	value, err := c.expr(a.Value)
	if err != nil {
		return "", err
	}
	op := " = "
	if a.Merge {
		op = " += "
	}
	return target + op + value, nil
}

func labelAssignment(l queryir.LabelAssignment) (string, error) {
	if l.Variable == "" || len(l.Labels) == 0 {
		return "", queryir.GrammarErrorf("", "label assignment needs a variable and at least one label")
	}
	var sb strings.Builder
	sb.WriteString(Identifier(l.Variable))
	for _, label := range l.Labels {
		sb.WriteByte(':')
		sb.WriteString(Identifier(label))
	}
	return sb.String(), nil
}

func (c *compilation) deletions(args []queryir.Node) (string, error) {
	if len(args) == 0 {
		return "", queryir.GrammarErrorf("", "at least one expression is required")
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		e, ok := arg.(queryir.Expr)
		if !ok {
			return "", queryir.GrammarErrorf("", "argument %d is %T, want an expression", i+1, arg)
		}
		text, err := c.expr(e)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return strings.Join(parts, ", "), nil
}

func (c *compilation) removals(args []queryir.Node) (string, error) {
	if len(args) == 0 {
		return "", queryir.GrammarErrorf("", "at least one property or label is required")
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		switch r := arg.(type) {
		case queryir.Property:
			text, err := c.expr(r)
			if err != nil {
				return "", err
			}
			parts[i] = text
		case queryir.LabelAssignment:
			text, err := labelAssignment(r)
			if err != nil {
				return "", err
			}
			parts[i] = text
		default:
			return "", queryir.GrammarErrorf("", "argument %d is %T, want a property or label", i+1, arg)
		}
	}
	return strings.Join(parts, ", "), nil
}

func (c *compilation) sortItems(args []queryir.Node) (string, error) {
	if len(args) == 0 {
		return "", queryir.GrammarErrorf("", "at least one sort item is required")
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		var (
			e     queryir.Expr
			order queryir.SortOrder
		)
		switch s := arg.(type) {
		case queryir.SortItem:
			e, order = s.Expr, s.Order
		case queryir.Expr:
			e = s
		default:
			return "", queryir.GrammarErrorf("", "argument %d is %T, want a sort item", i+1, arg)
		}
		text, err := c.expr(e)
		if err != nil {
			return "", err
		}
		switch order {
		case queryir.SortDefault:
		case queryir.SortAsc, queryir.SortDesc:
			text += " " + string(order)
		default:
			return "", queryir.GrammarErrorf("", "unknown sort order %q", order)
		}
		parts[i] = text
	}
	return strings.Join(parts, ", "), nil
}

// pagination accepts one non-negative integer literal or a parameter.
func (c *compilation) pagination(args []queryir.Node) (string, error) {
	if len(args) != 1 {
		return "", queryir.GrammarErrorf("", "expected exactly one count, got %d", len(args))
	}
	switch a := args[0].(type) {
	case queryir.Param:
		return c.expr(a)
	case queryir.Literal:
		if !isIntegerLiteral(a) {
			return "", queryir.GrammarErrorf("", "count %v is not a non-negative integer", a.Value)
		}
		return c.expr(a)
	default:
		return "", queryir.GrammarErrorf("", "count must be an integer literal or parameter, got %T", args[0])
	}
}

func (c *compilation) unwind(args []queryir.Node) (string, error) {
	if len(args) != 1 {
		return "", queryir.GrammarErrorf("", "UNWIND takes exactly one aliased expression, got %d arguments", len(args))
	}
	a, ok := args[0].(queryir.Alias)
	if !ok {
		return "", queryir.GrammarErrorf("", "UNWIND argument is %T, want expr AS name", args[0])
	}
	return c.alias(a)
}

// callSubquery renders { inner } sharing this compilation's parameters.
func (c *compilation) callSubquery(args []queryir.Node) (string, error) {
	if len(args) != 1 {
		return "", queryir.GrammarErrorf("", "CALL takes exactly one subquery, got %d arguments", len(args))
	}
	sub, ok := args[0].(queryir.Subquery)
	if !ok {
		return "", queryir.GrammarErrorf("", "CALL argument is %T, want a subquery", args[0])
	}
	if len(sub.Plan.Clauses) == 0 {
		return "", queryir.GrammarErrorf("", "CALL subquery is empty")
	}
	inner, err := c.assemble(sub.Plan, " ")
	if err != nil {
		return "", err
	}
	return "{ " + inner + " }", nil
}

func (c *compilation) loadCSV(args []queryir.Node) (string, error) {
	if len(args) != 1 {
		return "", queryir.GrammarErrorf("", "LOAD CSV takes exactly one source, got %d arguments", len(args))
	}
	src, ok := args[0].(queryir.CSVSource)
	if !ok {
		return "", queryir.GrammarErrorf("", "LOAD CSV argument is %T, want a CSV source", args[0])
	}
	if src.Alias == "" {
		return "", queryir.GrammarErrorf("", "LOAD CSV needs a row alias")
	}
	url, err := c.expr(src.URL)
	if err != nil {
		return "", err
	}
	text := "FROM " + url + " AS " + Identifier(src.Alias)
	if src.FieldTerminator != "" {
		text += " FIELDTERMINATOR " + QuoteString(src.FieldTerminator)
	}
	return text, nil
}

// foreach renders (x IN list | body). The body may only mutate.
func (c *compilation) foreach(args []queryir.Node) (string, error) {
	if len(args) != 1 {
		return "", queryir.GrammarErrorf("", "FOREACH takes exactly one iteration, got %d arguments", len(args))
	}
	it, ok := args[0].(queryir.Iteration)
	if !ok {
		return "", queryir.GrammarErrorf("", "FOREACH argument is %T, want an iteration", args[0])
	}
	if it.Variable == "" {
		return "", queryir.GrammarErrorf("", "FOREACH needs a loop variable")
	}
	if len(it.Body.Clauses) == 0 {
		return "", queryir.GrammarErrorf("", "FOREACH body is empty")
	}
	for _, cl := range it.Body.Clauses {
		if !queryir.ForeachBodyKinds[cl.Kind] {
			return "", queryir.GrammarErrorf("", "%s is not allowed inside FOREACH", cl.Kind.Keyword())
		}
	}
	list, err := c.expr(it.List)
	if err != nil {
		return "", err
	}
	body, err := c.assemble(it.Body, " ")
	if err != nil {
		return "", err
	}
	return "(" + Identifier(it.Variable) + " IN " + list + " | " + body + ")", nil
}

// schemaTarget renders the FOR (v:Label) part and the property references.
func schemaTarget(variable, label string, props []string) (string, []string, error) {
	if label == "" {
		return "", nil, queryir.GrammarErrorf("", "a label is required")
	}
	if len(props) == 0 {
		return "", nil, queryir.GrammarErrorf("", "at least one property is required")
	}
	if variable == "" {
		variable = "n"
	}
	v := Identifier(variable)
	refs := make([]string, len(props))
	for i, p := range props {
		refs[i] = v + "." + Identifier(p)
	}
	return "FOR (" + v + ":" + Identifier(label) + ")", refs, nil
}

func schemaHeader(name string, ifNotExists bool) string {
	var sb strings.Builder
	if name != "" {
		sb.WriteString(Identifier(name))
		sb.WriteByte(' ')
	}
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	return sb.String()
}

func (c *compilation) createIndex(args []queryir.Node) (string, error) {
	if len(args) != 1 {
		return "", queryir.GrammarErrorf("", "CREATE INDEX takes exactly one index spec, got %d arguments", len(args))
	}
	spec, ok := args[0].(queryir.IndexSpec)
	if !ok {
		return "", queryir.GrammarErrorf("", "CREATE INDEX argument is %T, want an index spec", args[0])
	}
	target, refs, err := schemaTarget(spec.Variable, spec.Label, spec.Properties)
	if err != nil {
		return "", err
	}
	return schemaHeader(spec.Name, spec.IfNotExists) + target + " ON (" + strings.Join(refs, ", ") + ")", nil
}

func (c *compilation) createConstraint(args []queryir.Node) (string, error) {
	if len(args) != 1 {
		return "", queryir.GrammarErrorf("", "CREATE CONSTRAINT takes exactly one constraint spec, got %d arguments", len(args))
	}
	spec, ok := args[0].(queryir.ConstraintSpec)
	if !ok {
		return "", queryir.GrammarErrorf("", "CREATE CONSTRAINT argument is %T, want a constraint spec", args[0])
	}
	target, refs, err := schemaTarget(spec.Variable, spec.Label, spec.Properties)
	if err != nil {
		return "", err
	}

	subject := refs[0]
	if len(refs) > 1 {
		subject = "(" + strings.Join(refs, ", ") + ")"
	}
	var predicate string
	switch spec.Kind {
	case queryir.ConstraintUnique, "":
		predicate = "IS UNIQUE"
	case queryir.ConstraintNodeKey:
		predicate = "IS NODE KEY"
	case queryir.ConstraintNotNull:
		if len(refs) != 1 {
			return "", queryir.GrammarErrorf("", "IS NOT NULL constrains exactly one property, got %d", len(refs))
		}
		predicate = "IS NOT NULL"
	default:
		return "", queryir.GrammarErrorf("", "unknown constraint kind %q", spec.Kind)
	}
	return schemaHeader(spec.Name, spec.IfNotExists) + target + " REQUIRE " + subject + " " + predicate, nil
}

func (c *compilation) drop(args []queryir.Node) (string, error) {
	if len(args) != 1 {
		return "", queryir.GrammarErrorf("", "DROP takes exactly one name, got %d arguments", len(args))
	}
	spec, ok := args[0].(queryir.DropSpec)
	if !ok {
		return "", queryir.GrammarErrorf("", "DROP argument is %T, want a drop spec", args[0])
	}
	if spec.Name == "" {
		return "", queryir.GrammarErrorf("", "DROP needs a name")
	}
	text := Identifier(spec.Name)
	if spec.IfExists {
		text += " IF EXISTS"
	}
	return text, nil
}
