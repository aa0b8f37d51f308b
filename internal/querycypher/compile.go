package querycypher

import (
	"io"
	"log/slog"

	"github.com/roach88/quiver/internal/ir"
	"github.com/roach88/quiver/internal/queryir"
)

// CompiledQuery is the output of one compilation.
type CompiledQuery struct {
	// Text is the Cypher statement. Caller values never appear in it.
	Text string

	// Parameters maps each referenced parameter name to the caller's value,
	// untransformed.
	Parameters map[string]any

	// ParamOrder lists parameter names in first-reference order.
	ParamOrder []string

	// AccessMode is the inferred or overridden read/write classification.
	AccessMode queryir.AccessMode
}

// Fingerprint returns the content-addressed identity of the statement:
// a hash of its text and parameter names, independent of parameter values.
func (q *CompiledQuery) Fingerprint() (string, error) {
	return ir.Fingerprint(q.Text, q.ParamOrder)
}

// CypherCompiler compiles query plans to parameterized Cypher.
//
// CRITICAL: All caller values are parameterized or rendered as escaped
// literals; nothing is spliced into the text unescaped.
// CRITICAL: Compilation is all-or-nothing; on error no text is returned.
//
// A CypherCompiler holds only options and is safe for concurrent use.
type CypherCompiler struct {
	// Mode overrides access-mode inference when set.
	Mode *queryir.AccessMode

	// Pretty joins top-level clauses with newlines instead of spaces.
	Pretty bool

	// Logger receives one debug record per compiled query.
	Logger *slog.Logger
}

// NewCypherCompiler creates a CypherCompiler with a discarding logger.
func NewCypherCompiler() *CypherCompiler {
	return &CypherCompiler{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// compilation is the per-call state: the parameter registry.
type compilation struct {
	params *paramRegistry
}

// Compile converts a plan to Cypher text, parameters and access mode.
func (c *CypherCompiler) Compile(plan queryir.Plan) (*CompiledQuery, error) {
	if len(plan.Clauses) == 0 {
		return nil, queryir.GrammarErrorf("", "plan has no clauses")
	}

	sep := " "
	if c.Pretty {
		sep = "\n"
	}
	st := &compilation{params: newParamRegistry()}
	text, err := st.assemble(plan, sep)
	if err != nil {
		return nil, err
	}

	mode := InferAccessMode(plan)
	if c.Mode != nil {
		mode = *c.Mode
	}

	q := &CompiledQuery{
		Text:       text,
		Parameters: st.params.materialize(),
		ParamOrder: st.params.names(),
		AccessMode: mode,
	}

	if c.Logger != nil {
		attrs := []any{
			"clauses", len(plan.Clauses),
			"params", len(q.ParamOrder),
			"mode", mode,
		}
		if fp, err := q.Fingerprint(); err != nil {
			attrs = append(attrs, "fingerprint_error", err)
		} else {
			attrs = append(attrs, "fingerprint", fp)
		}
		c.Logger.Debug("compiled query", attrs...)
	}
	return q, nil
}
