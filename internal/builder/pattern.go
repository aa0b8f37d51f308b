package builder

import "github.com/roach88/quiver/internal/queryir"

// N is a node pattern (variable:label {props}). Either name may be empty.
func N(variable, label string, props ...queryir.MapEntry) queryir.NodePattern {
	return queryir.NodePattern{Variable: variable, Label: label, Props: props}
}

// Out is -[variable:typ]->.
func Out(variable, typ string, props ...queryir.MapEntry) queryir.RelPattern {
	return queryir.RelPattern{Variable: variable, Type: typ, Direction: queryir.Forward, Props: props}
}

// In is <-[variable:typ]-.
func In(variable, typ string, props ...queryir.MapEntry) queryir.RelPattern {
	return queryir.RelPattern{Variable: variable, Type: typ, Direction: queryir.Backward, Props: props}
}

// Both is -[variable:typ]-.
func Both(variable, typ string, props ...queryir.MapEntry) queryir.RelPattern {
	return queryir.RelPattern{Variable: variable, Type: typ, Direction: queryir.Undirected, Props: props}
}

// Hops sets a bracket-form length (*n, *lo..hi) on a relationship.
func Hops(r queryir.RelPattern, length *queryir.Length) queryir.RelPattern {
	r.Length = length
	r.Quantified = false
	return r
}

// Quantify sets a quantifier-form length ({n}, {lo,hi}, +, *) on a relationship.
func Quantify(r queryir.RelPattern, length *queryir.Length) queryir.RelPattern {
	r.Length = length
	r.Quantified = true
	return r
}

// Pattern builds an alternating node/relationship pattern.
func Pattern(elems ...queryir.PatternElement) queryir.Pattern {
	return queryir.Pattern{Elements: elems}
}

// Named binds a path variable: name = pattern.
func Named(name string, p queryir.Pattern) queryir.Pattern {
	p.PathVar = name
	return p
}

// Shortest applies SHORTEST k.
func Shortest(k int, p queryir.Pattern) queryir.Pattern {
	p.Selector = queryir.Selector{Kind: queryir.SelectShortest, K: k}
	return p
}

// AllShortest applies ALL SHORTEST.
func AllShortest(p queryir.Pattern) queryir.Pattern {
	p.Selector = queryir.Selector{Kind: queryir.SelectAllShortest}
	return p
}

// ShortestGroups applies SHORTEST k GROUPS.
func ShortestGroups(k int, p queryir.Pattern) queryir.Pattern {
	p.Selector = queryir.Selector{Kind: queryir.SelectShortestGroups, K: k}
	return p
}

// Any applies ANY, or ANY k when k > 0.
func Any(k int, p queryir.Pattern) queryir.Pattern {
	p.Selector = queryir.Selector{Kind: queryir.SelectAny, K: k}
	return p
}
