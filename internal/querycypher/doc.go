// Package querycypher compiles queryir plans to parameterized Cypher.
//
// The compiler is a pure function of its input plan: each Compile call owns
// its parameter registry and output buffer, performs no I/O, and either
// returns a complete CompiledQuery or an error with no partial output.
//
// Components:
//   - literal.go: literal formatting and identifier quoting
//   - pattern.go: node/relationship patterns, lengths, path selectors
//   - expr.go: expression trees with precedence-aware parenthesization
//   - params.go: the ordered, deduplicating parameter registry
//   - clause.go: one rendering rule per clause kind
//   - assemble.go: canonical clause order and SET coalescing
//   - access.go: read/write inference
package querycypher
