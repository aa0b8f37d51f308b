package querycypher

import "github.com/roach88/quiver/internal/queryir"

// InferAccessMode returns AccessWrite if any clause of the plan, including
// clauses nested in CALL subqueries and FOREACH bodies, is a mutation kind.
// Otherwise it returns AccessRead.
func InferAccessMode(p queryir.Plan) queryir.AccessMode {
	if hasMutation(p) {
		return queryir.AccessWrite
	}
	return queryir.AccessRead
}

func hasMutation(p queryir.Plan) bool {
	for _, cl := range p.Clauses {
		if cl.Kind.IsMutation() {
			return true
		}
		for _, arg := range cl.Args {
			switch a := arg.(type) {
			case queryir.Subquery:
				if hasMutation(a.Plan) {
					return true
				}
			case queryir.Iteration:
				if hasMutation(a.Body) {
					return true
				}
			}
		}
	}
	return false
}
