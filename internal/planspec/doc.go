// Package planspec loads query plans from YAML and CUE documents.
//
// A document names a plan and lists its clauses. Each clause is a one-key
// map from clause kind to its arguments, written in the dsl syntax:
//
//	name: adults
//	params:
//	  min_age: 21
//	clauses:
//	  - match: "(p:Person)"
//	  - where: "p.age > $min_age"
//	  - return: ["p.name AS name"]
//
// The same shape is accepted from CUE under a top-level plans struct, where
// the field label is the plan name:
//
//	plans: adults: {
//		params: min_age: 21
//		clauses: [{match: "(p:Person)"}, {where: "p.age > $min_age"}, {return: "p"}]
//	}
//
// A document may use comprehension: {label, variable, filter, projection}
// instead of clauses.
package planspec
