package builder

import (
	"github.com/roach88/quiver/internal/querycypher"
	"github.com/roach88/quiver/internal/queryir"
)

// Query accumulates clauses in call order.
//
// A Query is not safe for concurrent mutation; the Plan it produces is an
// independent copy.
type Query struct {
	clauses []queryir.Clause
}

// New returns an empty query.
func New() *Query {
	return &Query{}
}

func (q *Query) add(kind queryir.ClauseKind, args ...queryir.Node) *Query {
	q.clauses = append(q.clauses, queryir.Clause{Kind: kind, Args: args})
	return q
}

func patternArgs(patterns []queryir.PatternSource) []queryir.Node {
	args := make([]queryir.Node, len(patterns))
	for i, p := range patterns {
		args[i] = p
	}
	return args
}

func exprArgs(exprs []queryir.Expr) []queryir.Node {
	args := make([]queryir.Node, len(exprs))
	for i, e := range exprs {
		args[i] = e
	}
	return args
}

// Match adds MATCH p1, p2, ...
func (q *Query) Match(patterns ...queryir.PatternSource) *Query {
	return q.add(queryir.KindMatch, patternArgs(patterns)...)
}

// OptionalMatch adds OPTIONAL MATCH.
func (q *Query) OptionalMatch(patterns ...queryir.PatternSource) *Query {
	return q.add(queryir.KindOptionalMatch, patternArgs(patterns)...)
}

// Where adds WHERE; multiple conditions are AND-joined.
func (q *Query) Where(conds ...queryir.Expr) *Query {
	return q.add(queryir.KindWhere, exprArgs(conds)...)
}

// Return adds RETURN. Items are expressions, As aliases, or Star.
func (q *Query) Return(items ...queryir.Node) *Query {
	return q.add(queryir.KindReturn, items...)
}

// ReturnDistinct adds RETURN DISTINCT.
func (q *Query) ReturnDistinct(items ...queryir.Node) *Query {
	return q.add(queryir.KindReturn, append([]queryir.Node{queryir.Distinct{}}, items...)...)
}

// With adds WITH.
func (q *Query) With(items ...queryir.Node) *Query {
	return q.add(queryir.KindWith, items...)
}

// WithDistinct adds WITH DISTINCT.
func (q *Query) WithDistinct(items ...queryir.Node) *Query {
	return q.add(queryir.KindWith, append([]queryir.Node{queryir.Distinct{}}, items...)...)
}

// Create adds CREATE.
func (q *Query) Create(patterns ...queryir.PatternSource) *Query {
	return q.add(queryir.KindCreate, patternArgs(patterns)...)
}

// Merge adds MERGE.
func (q *Query) Merge(pattern queryir.PatternSource) *Query {
	return q.add(queryir.KindMerge, pattern)
}

// Set adds SET. Items are Assign, MergeProps or AddLabels results.
func (q *Query) Set(items ...queryir.Node) *Query {
	return q.add(queryir.KindSet, items...)
}

// OnCreateSet adds ON CREATE SET.
func (q *Query) OnCreateSet(items ...queryir.Node) *Query {
	return q.add(queryir.KindOnCreateSet, items...)
}

// OnMatchSet adds ON MATCH SET.
func (q *Query) OnMatchSet(items ...queryir.Node) *Query {
	return q.add(queryir.KindOnMatchSet, items...)
}

// Delete adds DELETE.
func (q *Query) Delete(exprs ...queryir.Expr) *Query {
	return q.add(queryir.KindDelete, exprArgs(exprs)...)
}

// DetachDelete adds DETACH DELETE.
func (q *Query) DetachDelete(exprs ...queryir.Expr) *Query {
	return q.add(queryir.KindDetachDelete, exprArgs(exprs)...)
}

// Remove adds REMOVE. Items are properties or AddLabels results.
func (q *Query) Remove(items ...queryir.Node) *Query {
	return q.add(queryir.KindRemove, items...)
}

// OrderBy adds ORDER BY. Items are expressions, Asc or Desc.
func (q *Query) OrderBy(items ...queryir.Node) *Query {
	return q.add(queryir.KindOrderBy, items...)
}

// Skip adds SKIP. n is an integer or a Param.
func (q *Query) Skip(n any) *Query {
	return q.add(queryir.KindSkip, count(n))
}

// Limit adds LIMIT. n is an integer or a Param.
func (q *Query) Limit(n any) *Query {
	return q.add(queryir.KindLimit, count(n))
}

func count(n any) queryir.Node {
	if e, ok := n.(queryir.Expr); ok {
		return e
	}
	return queryir.Literal{Value: n}
}

// Unwind adds UNWIND list AS name.
func (q *Query) Unwind(list queryir.Expr, name string) *Query {
	return q.add(queryir.KindUnwind, queryir.Alias{Expr: list, Name: name})
}

// Union adds UNION.
func (q *Query) Union() *Query {
	return q.add(queryir.KindUnion)
}

// UnionAll adds UNION ALL.
func (q *Query) UnionAll() *Query {
	return q.add(queryir.KindUnionAll)
}

// Call adds CALL { sub }.
func (q *Query) Call(sub *Query) *Query {
	return q.add(queryir.KindCallSubquery, queryir.Subquery{Plan: sub.Plan()})
}

// LoadCSV adds LOAD CSV FROM url AS alias.
func (q *Query) LoadCSV(url queryir.Expr, alias string, opts ...CSVOption) *Query {
	return q.add(queryir.KindLoadCsv, csvSource(url, alias, opts))
}

// LoadCSVWithHeaders adds LOAD CSV WITH HEADERS FROM url AS alias.
func (q *Query) LoadCSVWithHeaders(url queryir.Expr, alias string, opts ...CSVOption) *Query {
	return q.add(queryir.KindLoadCsvHeaders, csvSource(url, alias, opts))
}

// CSVOption configures a LOAD CSV source.
type CSVOption func(*queryir.CSVSource)

// FieldTerminator sets FIELDTERMINATOR.
func FieldTerminator(sep string) CSVOption {
	return func(s *queryir.CSVSource) {
		s.FieldTerminator = sep
	}
}

func csvSource(url queryir.Expr, alias string, opts []CSVOption) queryir.CSVSource {
	src := queryir.CSVSource{URL: url, Alias: alias}
	for _, opt := range opts {
		opt(&src)
	}
	return src
}

// Foreach adds FOREACH (variable IN list | body).
func (q *Query) Foreach(variable string, list queryir.Expr, body *Query) *Query {
	return q.add(queryir.KindForeach, queryir.Iteration{Variable: variable, List: list, Body: body.Plan()})
}

// CreateIndex adds CREATE INDEX.
func (q *Query) CreateIndex(spec queryir.IndexSpec) *Query {
	return q.add(queryir.KindCreateIndex, spec)
}

// DropIndex adds DROP INDEX.
func (q *Query) DropIndex(name string, ifExists bool) *Query {
	return q.add(queryir.KindDropIndex, queryir.DropSpec{Name: name, IfExists: ifExists})
}

// CreateConstraint adds CREATE CONSTRAINT.
func (q *Query) CreateConstraint(spec queryir.ConstraintSpec) *Query {
	return q.add(queryir.KindCreateConstraint, spec)
}

// DropConstraint adds DROP CONSTRAINT.
func (q *Query) DropConstraint(name string, ifExists bool) *Query {
	return q.add(queryir.KindDropConstraint, queryir.DropSpec{Name: name, IfExists: ifExists})
}

// Plan returns a copy of the accumulated clauses.
func (q *Query) Plan() queryir.Plan {
	clauses := make([]queryir.Clause, len(q.clauses))
	copy(clauses, q.clauses)
	return queryir.Plan{Clauses: clauses}
}

// Compile compiles the query with a default compiler.
func (q *Query) Compile() (*querycypher.CompiledQuery, error) {
	return querycypher.NewCypherCompiler().Compile(q.Plan())
}
