package planspec

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/roach88/quiver/internal/builder"
	"github.com/roach88/quiver/internal/dsl"
	"github.com/roach88/quiver/internal/queryir"
)

// PlanDoc is one loaded plan with its bound parameters.
type PlanDoc struct {
	Name string

	// Mode overrides access-mode inference when the document sets mode.
	Mode *queryir.AccessMode

	// Params are the document params with Options.Params applied on top.
	Params map[string]any

	Plan queryir.Plan
	Pos  Position
}

// Options adjusts loading.
type Options struct {
	// Params override document params by name.
	Params map[string]any
}

// rawDoc is the decoded document shape shared by YAML and CUE.
type rawDoc struct {
	name          string
	mode          string
	params        map[string]any
	clauses       []rawClause
	comprehension map[string]any
	pos           Position
}

type rawClause struct {
	fields map[string]any
	pos    Position
}

func (o Options) build(raw rawDoc) (PlanDoc, error) {
	if raw.name == "" {
		return PlanDoc{}, loadErrorf(ErrCodeInvalidDoc, raw.pos, "plan has no name")
	}
	doc := PlanDoc{Name: raw.name, Pos: raw.pos, Params: map[string]any{}}
	if raw.mode != "" {
		mode, err := queryir.ParseAccessMode(raw.mode)
		if err != nil {
			return PlanDoc{}, loadErrorf(ErrCodeInvalidMode, raw.pos, "plan %s: %v", raw.name, err)
		}
		doc.Mode = &mode
	}
	maps.Copy(doc.Params, raw.params)
	maps.Copy(doc.Params, o.Params)

	cb := &clauseBuilder{parser: dsl.New(doc.Params)}
	switch {
	case raw.comprehension != nil && len(raw.clauses) > 0:
		return PlanDoc{}, loadErrorf(ErrCodeInvalidDoc, raw.pos, "plan %s has both clauses and comprehension", raw.name)
	case raw.comprehension != nil:
		plan, err := cb.comprehension(raw.comprehension, raw.pos)
		if err != nil {
			return PlanDoc{}, err
		}
		doc.Plan = plan
	case len(raw.clauses) == 0:
		return PlanDoc{}, loadErrorf(ErrCodeInvalidDoc, raw.pos, "plan %s has no clauses", raw.name)
	default:
		for _, rc := range raw.clauses {
			cl, err := cb.clause(rc.fields, rc.pos)
			if err != nil {
				return PlanDoc{}, err
			}
			doc.Plan.Clauses = append(doc.Plan.Clauses, cl)
		}
	}
	return doc, nil
}

// clauseBuilder turns decoded clause maps into plan clauses.
type clauseBuilder struct {
	parser *dsl.Parser
}

func (b *clauseBuilder) syntax(pos Position, err error) error {
	return &LoadError{Code: ErrCodeSyntax, Message: err.Error(), Pos: pos}
}

func (b *clauseBuilder) comprehension(m map[string]any, pos Position) (queryir.Plan, error) {
	c := builder.Comprehension{}
	var err error
	if c.Label, err = optString(m, "label"); err != nil {
		return queryir.Plan{}, loadErrorf(ErrCodeClauseShape, pos, "comprehension: %v", err)
	}
	if c.Variable, err = optString(m, "variable"); err != nil {
		return queryir.Plan{}, loadErrorf(ErrCodeClauseShape, pos, "comprehension: %v", err)
	}
	if src, err := optString(m, "filter"); err != nil {
		return queryir.Plan{}, loadErrorf(ErrCodeClauseShape, pos, "comprehension: %v", err)
	} else if src != "" {
		if c.Filter, err = b.parser.Expr(src); err != nil {
			return queryir.Plan{}, b.syntax(pos, err)
		}
	}
	if src, err := optString(m, "projection"); err != nil {
		return queryir.Plan{}, loadErrorf(ErrCodeClauseShape, pos, "comprehension: %v", err)
	} else if src != "" {
		if c.Projection, err = b.parser.Expr(src); err != nil {
			return queryir.Plan{}, b.syntax(pos, err)
		}
	}
	plan, err := c.Plan()
	if err != nil {
		return queryir.Plan{}, loadErrorf(ErrCodeClauseShape, pos, "comprehension: %v", err)
	}
	return plan, nil
}

func (b *clauseBuilder) subPlan(v any, pos Position) (queryir.Plan, error) {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return queryir.Plan{}, loadErrorf(ErrCodeClauseShape, pos, "expected a non-empty list of clauses")
	}
	var plan queryir.Plan
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return queryir.Plan{}, loadErrorf(ErrCodeClauseShape, pos, "clause must be a map, got %T", item)
		}
		cl, err := b.clause(fields, pos)
		if err != nil {
			return queryir.Plan{}, err
		}
		plan.Clauses = append(plan.Clauses, cl)
	}
	return plan, nil
}

// clause reads a one-key map {kind: args}. A projection may also carry
// distinct: true.
func (b *clauseBuilder) clause(fields map[string]any, pos Position) (queryir.Clause, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "distinct" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) != 1 {
		return queryir.Clause{}, loadErrorf(ErrCodeClauseShape, pos, "clause needs exactly one kind, got [%s]", strings.Join(keys, ", "))
	}
	kind, err := queryir.ParseClauseKind(keys[0])
	if err != nil {
		return queryir.Clause{}, loadErrorf(ErrCodeUnknownClause, pos, "%v", err)
	}

	distinct, err := optBool(fields, "distinct")
	if err != nil {
		return queryir.Clause{}, loadErrorf(ErrCodeClauseShape, pos, "%v", err)
	}
	if distinct && kind != queryir.KindReturn && kind != queryir.KindWith {
		return queryir.Clause{}, loadErrorf(ErrCodeClauseShape, pos, "distinct only applies to return and with, not %s", kind)
	}

	args, err := b.args(kind, fields[keys[0]], pos)
	if err != nil {
		return queryir.Clause{}, err
	}
	if distinct {
		args = append([]queryir.Node{queryir.Distinct{}}, args...)
	}
	return queryir.Clause{Kind: kind, Args: args}, nil
}

func (b *clauseBuilder) args(kind queryir.ClauseKind, v any, pos Position) ([]queryir.Node, error) {
	switch kind {
	case queryir.KindMatch, queryir.KindOptionalMatch, queryir.KindCreate, queryir.KindMerge:
		return b.each(v, pos, func(s string) (queryir.Node, error) { return b.parser.Pattern(s) })
	case queryir.KindWhere, queryir.KindDelete, queryir.KindDetachDelete:
		return b.each(v, pos, func(s string) (queryir.Node, error) { return b.parser.Expr(s) })
	case queryir.KindReturn, queryir.KindWith:
		return b.each(v, pos, b.parser.Projection)
	case queryir.KindSet, queryir.KindOnCreateSet, queryir.KindOnMatchSet:
		return b.each(v, pos, b.parser.SetItem)
	case queryir.KindRemove:
		return b.each(v, pos, b.parser.RemoveItem)
	case queryir.KindOrderBy:
		return b.each(v, pos, func(s string) (queryir.Node, error) { return b.parser.SortItem(s) })
	case queryir.KindSkip, queryir.KindLimit:
		return b.count(v, pos)
	case queryir.KindUnwind:
		return b.unwind(v, pos)
	case queryir.KindUnion, queryir.KindUnionAll:
		return nil, nil
	case queryir.KindCallSubquery:
		sub, err := b.subPlan(v, pos)
		if err != nil {
			return nil, err
		}
		return []queryir.Node{queryir.Subquery{Plan: sub}}, nil
	case queryir.KindForeach:
		return b.foreach(v, pos)
	case queryir.KindLoadCsv, queryir.KindLoadCsvHeaders:
		return b.loadCSV(v, pos)
	case queryir.KindCreateIndex:
		return b.index(v, pos)
	case queryir.KindCreateConstraint:
		return b.constraint(v, pos)
	case queryir.KindDropIndex, queryir.KindDropConstraint:
		return b.drop(v, pos)
	default:
		return nil, loadErrorf(ErrCodeUnknownClause, pos, "unsupported clause kind %s", kind)
	}
}

// each parses a string or a list of strings with parse.
func (b *clauseBuilder) each(v any, pos Position, parse func(string) (queryir.Node, error)) ([]queryir.Node, error) {
	srcs, err := stringList(v)
	if err != nil {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "%v", err)
	}
	nodes := make([]queryir.Node, len(srcs))
	for i, src := range srcs {
		n, err := parse(src)
		if err != nil {
			return nil, b.syntax(pos, err)
		}
		nodes[i] = n
	}
	return nodes, nil
}

func (b *clauseBuilder) count(v any, pos Position) ([]queryir.Node, error) {
	switch n := v.(type) {
	case int, int64, uint64:
		return []queryir.Node{queryir.Literal{Value: n}}, nil
	case string:
		e, err := b.parser.Expr(n)
		if err != nil {
			return nil, b.syntax(pos, err)
		}
		return []queryir.Node{e}, nil
	default:
		return nil, loadErrorf(ErrCodeClauseShape, pos, "count must be an integer or a $parameter, got %T", v)
	}
}

func (b *clauseBuilder) unwind(v any, pos Position) ([]queryir.Node, error) {
	src, ok := v.(string)
	if !ok {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "unwind takes \"expr AS name\", got %T", v)
	}
	item, err := b.parser.Projection(src)
	if err != nil {
		return nil, b.syntax(pos, err)
	}
	if _, ok := item.(queryir.Alias); !ok {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "unwind %q needs AS name", src)
	}
	return []queryir.Node{item}, nil
}

func (b *clauseBuilder) foreach(v any, pos Position) ([]queryir.Node, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "foreach takes {variable, list, do}, got %T", v)
	}
	variable, err := reqString(m, "variable")
	if err != nil {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "foreach: %v", err)
	}
	listSrc, err := reqString(m, "list")
	if err != nil {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "foreach: %v", err)
	}
	list, err := b.parser.Expr(listSrc)
	if err != nil {
		return nil, b.syntax(pos, err)
	}
	body, err := b.subPlan(m["do"], pos)
	if err != nil {
		return nil, err
	}
	return []queryir.Node{queryir.Iteration{Variable: variable, List: list, Body: body}}, nil
}

func (b *clauseBuilder) loadCSV(v any, pos Position) ([]queryir.Node, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "load_csv takes {from, as, fieldterminator}, got %T", v)
	}
	fromSrc, err := reqString(m, "from")
	if err != nil {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "load_csv: %v", err)
	}
	alias, err := reqString(m, "as")
	if err != nil {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "load_csv: %v", err)
	}
	sep, err := optString(m, "fieldterminator")
	if err != nil {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "load_csv: %v", err)
	}
	url, err := b.parser.Expr(fromSrc)
	if err != nil {
		return nil, b.syntax(pos, err)
	}
	return []queryir.Node{queryir.CSVSource{URL: url, Alias: alias, FieldTerminator: sep}}, nil
}

// schemaFields reads the name/variable/label/properties/if_not_exists
// fields shared by index and constraint specs.
type schemaFields struct {
	name, variable, label string
	properties            []string
	ifNotExists           bool
}

func readSchemaFields(m map[string]any) (schemaFields, error) {
	var f schemaFields
	var err error
	if f.name, err = optString(m, "name"); err != nil {
		return f, err
	}
	if f.variable, err = optString(m, "variable"); err != nil {
		return f, err
	}
	if f.label, err = reqString(m, "label"); err != nil {
		return f, err
	}
	if f.properties, err = stringList(m["properties"]); err != nil {
		return f, fmt.Errorf("properties: %w", err)
	}
	if f.ifNotExists, err = optBool(m, "if_not_exists"); err != nil {
		return f, err
	}
	return f, nil
}

func (b *clauseBuilder) index(v any, pos Position) ([]queryir.Node, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "create_index takes a map, got %T", v)
	}
	f, err := readSchemaFields(m)
	if err != nil {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "create_index: %v", err)
	}
	return []queryir.Node{queryir.IndexSpec{
		Name:        f.name,
		Variable:    f.variable,
		Label:       f.label,
		Properties:  f.properties,
		IfNotExists: f.ifNotExists,
	}}, nil
}

func (b *clauseBuilder) constraint(v any, pos Position) ([]queryir.Node, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "create_constraint takes a map, got %T", v)
	}
	f, err := readSchemaFields(m)
	if err != nil {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "create_constraint: %v", err)
	}
	kind, err := optString(m, "kind")
	if err != nil {
		return nil, loadErrorf(ErrCodeClauseShape, pos, "create_constraint: %v", err)
	}
	return []queryir.Node{queryir.ConstraintSpec{
		Name:        f.name,
		Variable:    f.variable,
		Label:       f.label,
		Properties:  f.properties,
		Kind:        queryir.ConstraintKind(kind),
		IfNotExists: f.ifNotExists,
	}}, nil
}

// drop accepts a bare name or {name, if_exists}.
func (b *clauseBuilder) drop(v any, pos Position) ([]queryir.Node, error) {
	switch d := v.(type) {
	case string:
		return []queryir.Node{queryir.DropSpec{Name: d}}, nil
	case map[string]any:
		name, err := reqString(d, "name")
		if err != nil {
			return nil, loadErrorf(ErrCodeClauseShape, pos, "drop: %v", err)
		}
		ifExists, err := optBool(d, "if_exists")
		if err != nil {
			return nil, loadErrorf(ErrCodeClauseShape, pos, "drop: %v", err)
		}
		return []queryir.Node{queryir.DropSpec{Name: name, IfExists: ifExists}}, nil
	default:
		return nil, loadErrorf(ErrCodeClauseShape, pos, "drop takes a name or {name, if_exists}, got %T", v)
	}
}

// Decoded-value helpers.

func stringList(v any) ([]string, error) {
	switch s := v.(type) {
	case string:
		return []string{s}, nil
	case []string:
		return s, nil
	case []any:
		out := make([]string, len(s))
		for i, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d is %T, want a string", i+1, item)
			}
			out[i] = str
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("missing value")
	default:
		return nil, fmt.Errorf("want a string or a list of strings, got %T", v)
	}
}

func optString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	return s, nil
}

func reqString(m map[string]any, key string) (string, error) {
	s, err := optString(m, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func optBool(m map[string]any, key string) (bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean, got %T", key, v)
	}
	return b, nil
}
