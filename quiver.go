// Package quiver compiles graph query plans into parameterized Cypher.
//
// A plan is an ordered list of clauses built with the fluent builder, a
// small textual DSL, or YAML/CUE plan documents. Compilation returns the
// statement text, the parameter values keyed by name, the parameter names
// in first-reference order, and a read/write access mode for routing.
//
//	q, err := quiver.NewQuery().
//		Match(builder.Pattern(builder.N("p", "Person"))).
//		Where(builder.Gt(builder.Prop("p", "age"), builder.Param("min_age", 21))).
//		Return(builder.Prop("p", "name")).
//		Compile()
//	// q.Text == "MATCH (p:Person) WHERE p.age > $min_age RETURN p.name"
package quiver

import (
	"context"

	"github.com/roach88/quiver/internal/builder"
	"github.com/roach88/quiver/internal/planspec"
	"github.com/roach88/quiver/internal/querycypher"
	"github.com/roach88/quiver/internal/queryir"
)

type (
	Plan          = queryir.Plan
	Clause        = queryir.Clause
	AccessMode    = queryir.AccessMode
	CompileError  = queryir.CompileError
	CompiledQuery = querycypher.CompiledQuery
	Compiler      = querycypher.CypherCompiler
	Query         = builder.Query
	PlanDoc       = planspec.PlanDoc
	PlanResult    = planspec.Result
)

const (
	Read  = queryir.AccessRead
	Write = queryir.AccessWrite
)

// NewCompiler returns a compiler with default options.
func NewCompiler() *Compiler {
	return querycypher.NewCypherCompiler()
}

// Compile compiles plan with default options.
func Compile(plan Plan) (*CompiledQuery, error) {
	return querycypher.NewCypherCompiler().Compile(plan)
}

// NewQuery starts a fluent query.
func NewQuery() *Query {
	return builder.New()
}

// LoadPlans reads plan documents from a .yaml/.yml/.cue file or a
// directory. params override document parameters by name.
func LoadPlans(path string, params map[string]any) ([]PlanDoc, error) {
	return planspec.Load(path, planspec.Options{Params: params})
}

// CompileAll compiles docs concurrently. Per-plan failures are reported
// in the results; the error is set only when ctx is cancelled.
func CompileAll(ctx context.Context, docs []PlanDoc) ([]PlanResult, error) {
	return planspec.CompileAll(ctx, querycypher.NewCypherCompiler(), docs, 0)
}

// IsGrammarError reports whether err is a grammar violation.
func IsGrammarError(err error) bool {
	return queryir.IsGrammarError(err)
}

// IsPatternError reports whether err is a malformed pattern or chain.
func IsPatternError(err error) bool {
	return queryir.IsPatternError(err)
}
