package builder

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/quiver/internal/queryir"
)

// Comprehension is the simplified input form: every node with Label,
// optionally filtered, optionally projected.
//
//	Comprehension{Label: "Person", Filter: Gt(Prop("person", "age"), Lit(30))}
//
// expands to MATCH (person:Person) WHERE person.age > 30 RETURN person.
type Comprehension struct {
	Label      string
	Variable   string       // defaults to the lower-cased label
	Filter     queryir.Expr // optional
	Projection queryir.Expr // optional; defaults to the variable
}

// Plan expands the comprehension into MATCH / WHERE / RETURN.
func (c Comprehension) Plan() (queryir.Plan, error) {
	if c.Label == "" {
		return queryir.Plan{}, queryir.GrammarErrorf(queryir.KindMatch, "comprehension needs a label")
	}
	variable := c.Variable
	if variable == "" {
		variable = cases.Lower(language.Und).String(c.Label)
	}

	q := New().Match(Pattern(N(variable, c.Label)))
	if c.Filter != nil {
		q.Where(c.Filter)
	}
	projection := c.Projection
	if projection == nil {
		projection = Var(variable)
	}
	q.Return(projection)
	return q.Plan(), nil
}
