// Package harness provides conformance testing for the query compiler.
//
// A scenario carries one plan document, compiles it, records the result
// in an in-memory catalog, and validates the outcome. Catalog entry ids
// are sequential (entry-0001, ...) so runs are reproducible.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	params: { min_age: 30 }      # optional overrides
//	mode: write                  # optional access-mode override
//	pretty: false
//	plan:
//	  params: { min_age: 21 }
//	  clauses:
//	    - match: "(p:Person)"
//	    - where: "p.age > $min_age"
//	    - return: "p.name"
//	expect:
//	  text: "MATCH (p:Person) WHERE p.age > $min_age RETURN p.name"
//	  params: { min_age: 30 }
//	  param_order: [min_age]
//	  mode: read
//	assertions:
//	  - type: clause_order
//	    keywords: [MATCH, WHERE, RETURN]
//
// An expect clause may instead name a failure kind (grammar, pattern,
// syntax or load) in expect.error.
//
// # Assertion Types
//
//   - text_contains / text_absent: a fragment is present or absent
//   - clause_order: keywords appear in the given order
//   - param: a parameter is bound to a value (canonical JSON comparison)
//   - param_count: the number of bound parameters
//   - error_contains: the failure message contains a fragment
//
// # Properties
//
// Every successful compilation is also checked for determinism,
// placeholder coverage, access-mode inference and catalog round-trip.
//
// # Golden Files
//
// RunWithGolden compares a canonical-JSON snapshot of the outcome against
// testdata/golden/{name}.golden.
package harness
