// Package dsl parses a small Cypher-like text syntax into query plan nodes.
//
// Four shapes are understood:
//
//	patterns     p = SHORTEST 1 (a:Person {id: $id})-[:KNOWS*1..3]->(b)
//	chains       a::Person >> KNOWS+ >> b::Person
//	expressions  p.age > $min AND NOT (p.email IS NULL)
//	items        p.name AS name, p.age DESC, p.age = $age, p:Active
//
// Parameters ($name) are resolved against the values given to New, so the
// resulting nodes carry both the name and the bound value. Keywords are
// case-insensitive. The grammar is built with participle.
package dsl
