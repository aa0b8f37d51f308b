package builder

import "github.com/roach88/quiver/internal/queryir"

// ChainBuilder builds the operator-tree form of a pattern, mirroring
// a::Person >> KNOWS >> b::Person. Each step links the chain so far to the
// next term, so the tree is left-deep.
type ChainBuilder struct {
	root     queryir.ChainNode
	pathVar  string
	selector queryir.Selector
}

// From starts a chain at a node term.
func From(variable, label string) *ChainBuilder {
	return &ChainBuilder{root: queryir.Term(variable, label)}
}

// T is a chain term: a node (name is a label) or a relationship (name is a
// type) depending on its position.
func T(variable, name string, props ...queryir.MapEntry) queryir.ChainTerm {
	return queryir.ChainTerm{Variable: variable, Name: name, Props: props}
}

// Len attaches a quantifier to a relationship term.
func Len(t queryir.ChainTerm, length *queryir.Length) queryir.ChainTerm {
	t.Length = length
	return t
}

// To appends >> term.
func (c *ChainBuilder) To(t queryir.ChainTerm) *ChainBuilder {
	return c.link(queryir.Forward, t)
}

// Back appends << term.
func (c *ChainBuilder) Back(t queryir.ChainTerm) *ChainBuilder {
	return c.link(queryir.Backward, t)
}

// Dash appends -- term.
func (c *ChainBuilder) Dash(t queryir.ChainTerm) *ChainBuilder {
	return c.link(queryir.Undirected, t)
}

func (c *ChainBuilder) link(op queryir.Direction, t queryir.ChainTerm) *ChainBuilder {
	c.root = queryir.ChainLink{Op: op, Left: c.root, Right: t}
	return c
}

// As binds a path variable.
func (c *ChainBuilder) As(pathVar string) *ChainBuilder {
	c.pathVar = pathVar
	return c
}

// Select sets a path selector.
func (c *ChainBuilder) Select(sel queryir.Selector) *ChainBuilder {
	c.selector = sel
	return c
}

// Chain returns the built chain.
func (c *ChainBuilder) Chain() queryir.Chain {
	return queryir.Chain{PathVar: c.pathVar, Selector: c.selector, Root: c.root}
}
