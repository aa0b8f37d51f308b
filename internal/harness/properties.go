package harness

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/quiver/internal/ir"
	"github.com/roach88/quiver/internal/planspec"
	"github.com/roach88/quiver/internal/querycypher"
	"github.com/roach88/quiver/internal/queryir"
	"github.com/roach88/quiver/internal/store"
)

// checkProperties verifies the compiler properties every successful
// compilation must have. It returns one message per violated property.
//
// Properties:
//   - determinism: compiling the same document again yields identical
//     text, parameter order and parameters
//   - placeholders: every bound parameter appears as $name in the text,
//     exactly once in the order, and nothing unbound is ordered
//   - access mode: a plan with a mutating clause is never read, unless
//     the mode was overridden
//   - catalog: the recorded entry round-trips text, names and values
func checkProperties(ctx context.Context, compiler *querycypher.CypherCompiler, doc planspec.PlanDoc, q *querycypher.CompiledQuery, entry store.Entry) []string {
	var errs []string

	again, err := compile(ctx, compiler, doc)
	switch {
	case err != nil:
		errs = append(errs, fmt.Sprintf("determinism: second compilation failed: %v", err))
	case again.Text != q.Text:
		errs = append(errs, fmt.Sprintf("determinism: text changed: %q vs %q", q.Text, again.Text))
	case !reflect.DeepEqual(again.ParamOrder, q.ParamOrder):
		errs = append(errs, fmt.Sprintf("determinism: parameter order changed: %v vs %v", q.ParamOrder, again.ParamOrder))
	case !valuesEqual(again.Parameters, q.Parameters):
		errs = append(errs, "determinism: parameter values changed")
	}

	if len(q.ParamOrder) != len(q.Parameters) {
		errs = append(errs, fmt.Sprintf("placeholders: %d names ordered, %d bound", len(q.ParamOrder), len(q.Parameters)))
	}
	seen := make(map[string]bool, len(q.ParamOrder))
	for _, name := range q.ParamOrder {
		if seen[name] {
			errs = append(errs, fmt.Sprintf("placeholders: $%s ordered twice", name))
		}
		seen[name] = true
		if _, ok := q.Parameters[name]; !ok {
			errs = append(errs, fmt.Sprintf("placeholders: $%s ordered but not bound", name))
		}
		if !strings.Contains(q.Text, "$"+name) {
			errs = append(errs, fmt.Sprintf("placeholders: $%s bound but absent from text", name))
		}
	}

	if compiler.Mode == nil && doc.Mode == nil {
		if inferred := querycypher.InferAccessMode(doc.Plan); inferred != q.AccessMode {
			errs = append(errs, fmt.Sprintf("access mode: got %s, inferred %s", q.AccessMode, inferred))
		}
		for _, c := range doc.Plan.Clauses {
			if c.Kind.IsMutation() && q.AccessMode != queryir.AccessWrite {
				errs = append(errs, fmt.Sprintf("access mode: %s clause compiled as %s", c.Kind, q.AccessMode))
				break
			}
		}
	}

	if entry.Text != q.Text || !reflect.DeepEqual(entry.ParamNames, q.ParamOrder) || entry.AccessMode != q.AccessMode {
		errs = append(errs, fmt.Sprintf("catalog: entry %s does not match the compiled query", entry.ID))
	}
	if !valuesEqual(entry.ParamValues(), q.Parameters) {
		stored, _ := ir.MarshalCanonical(entry.ParamValues())
		errs = append(errs, fmt.Sprintf("catalog: stored parameters %s differ", stored))
	}

	return errs
}
