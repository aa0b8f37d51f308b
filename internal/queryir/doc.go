// Package queryir defines the query plan that the Cypher compiler consumes.
//
// A Plan is an ordered list of clauses. Each Clause carries a ClauseKind and
// an ordered list of arguments. Arguments are Nodes: expression trees,
// patterns, chains, or the small structural records some clauses need
// (sort items, assignments, CSV sources, schema specs).
//
// SEALED INTERFACES:
//
// Node, Expr, PatternSource, PatternElement and ChainNode are sealed with
// marker methods. Only types in this package implement them, so backends can
// switch exhaustively:
//
//	switch e := expr.(type) {
//	case Literal:
//	case Variable:
//	case Property:
//	...
//	}
//
// Plans are built once by a front-end (builder, dsl, planspec) and are
// read-only during compilation. Nothing in this package performs I/O.
//
// CHAINS:
//
// A Chain is the tree form of a pattern written with direction operators,
// e.g. a >> KNOWS >> b << MANAGES << c. Flatten walks the tree in order and
// produces an alternating node/relationship Pattern, rejecting chains whose
// element count is even or whose relationship flanks disagree.
package queryir
