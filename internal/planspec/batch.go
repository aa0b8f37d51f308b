package planspec

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/quiver/internal/querycypher"
)

// Result is the outcome of compiling one plan document.
type Result struct {
	Name  string
	Query *querycypher.CompiledQuery
	Err   error
}

// CompileAll compiles docs concurrently with at most workers goroutines
// (unbounded when workers <= 0). Results are in docs order. A document's
// mode applies unless the compiler already overrides the mode. A failing
// plan is reported in its Result; the returned error is set only when ctx
// is cancelled.
func CompileAll(ctx context.Context, compiler *querycypher.CypherCompiler, docs []PlanDoc, workers int) ([]Result, error) {
	results := make([]Result, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := *compiler
			if c.Mode == nil && doc.Mode != nil {
				c.Mode = doc.Mode
			}
			q, err := c.Compile(doc.Plan)
			results[i] = Result{Name: doc.Name, Query: q, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
