// Package builder is the Go front-end for quiver: a fluent query builder
// plus expression, pattern and chain helpers that produce queryir plans.
//
// Parameters are captured at ordinary call time:
//
//	q := builder.New().
//		Match(builder.Pattern(builder.N("p", "Person"))).
//		Where(builder.Gt(builder.Prop("p", "age"), builder.Param("min_age", 21))).
//		Return(builder.Prop("p", "name"))
//
//	compiled, err := q.Compile()
//
// The builder never renders text itself; querycypher does.
package builder
