package querycypher

import (
	"strconv"
	"strings"

	"github.com/roach88/quiver/internal/queryir"
)

// patternSource renders a Pattern or a Chain.
func (c *compilation) patternSource(src queryir.PatternSource) (string, error) {
	switch p := src.(type) {
	case queryir.Pattern:
		return c.pattern(p)
	case *queryir.Pattern:
		return c.pattern(*p)
	case queryir.Chain:
		flat, err := p.Flatten()
		if err != nil {
			return "", err
		}
		return c.pattern(flat)
	case *queryir.Chain:
		flat, err := p.Flatten()
		if err != nil {
			return "", err
		}
		return c.pattern(flat)
	case nil:
		return "", queryir.PatternErrorf("", "missing pattern")
	default:
		return "", queryir.GrammarErrorf("", "unsupported pattern type %T", src)
	}
}

// pattern renders path variable, selector and the element sequence, e.g.
//
//	p = SHORTEST 1 (a:Person)-[:KNOWS]->+(b:Person)
func (c *compilation) pattern(p queryir.Pattern) (string, error) {
	if len(p.Elements)%2 == 0 {
		return "", queryir.PatternErrorf("", "pattern has %d elements; patterns alternate node, relationship, node", len(p.Elements))
	}

	var sb strings.Builder
	if p.PathVar != "" {
		sb.WriteString(Identifier(p.PathVar))
		sb.WriteString(" = ")
	}
	sel, err := selector(p.Selector)
	if err != nil {
		return "", err
	}
	if sel != "" {
		sb.WriteString(sel)
		sb.WriteByte(' ')
	}

	for i, el := range p.Elements {
		var text string
		var err error
		if i%2 == 0 {
			node, ok := asNode(el)
			if !ok {
				return "", queryir.PatternErrorf("", "element %d must be a node, got %T", i, el)
			}
			text, err = c.nodePattern(node)
		} else {
			rel, ok := asRel(el)
			if !ok {
				return "", queryir.PatternErrorf("", "element %d must be a relationship, got %T", i, el)
			}
			text, err = c.relPattern(rel)
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func asNode(el queryir.PatternElement) (queryir.NodePattern, bool) {
	switch n := el.(type) {
	case queryir.NodePattern:
		return n, true
	case *queryir.NodePattern:
		return *n, true
	}
	return queryir.NodePattern{}, false
}

func asRel(el queryir.PatternElement) (queryir.RelPattern, bool) {
	switch r := el.(type) {
	case queryir.RelPattern:
		return r, true
	case *queryir.RelPattern:
		return *r, true
	}
	return queryir.RelPattern{}, false
}

// nodePattern renders (variable:Label {props}).
func (c *compilation) nodePattern(n queryir.NodePattern) (string, error) {
	var sb strings.Builder
	sb.WriteByte('(')
	if n.Variable != "" {
		sb.WriteString(Identifier(n.Variable))
	}
	if n.Label != "" {
		sb.WriteByte(':')
		sb.WriteString(Identifier(n.Label))
	}
	if len(n.Props) > 0 {
		props, err := c.propMap(n.Props)
		if err != nil {
			return "", err
		}
		if n.Variable != "" || n.Label != "" {
			sb.WriteByte(' ')
		}
		sb.WriteString(props)
	}
	sb.WriteByte(')')
	return sb.String(), nil
}

// relPattern renders -[variable:TYPE*len {props}]-> and its siblings.
// Quantified relationships put the length after the arrow instead.
func (c *compilation) relPattern(r queryir.RelPattern) (string, error) {
	var inner strings.Builder
	if r.Variable != "" {
		inner.WriteString(Identifier(r.Variable))
	}
	if r.Type != "" {
		inner.WriteByte(':')
		inner.WriteString(Identifier(r.Type))
	}

	var quantifier string
	if r.Length != nil {
		if err := checkLength(r.Length); err != nil {
			return "", err
		}
		if r.Quantified {
			quantifier = quantifierForm(r.Length)
		} else {
			inner.WriteString(bracketForm(r.Length))
		}
	}

	if len(r.Props) > 0 {
		props, err := c.propMap(r.Props)
		if err != nil {
			return "", err
		}
		if inner.Len() > 0 {
			inner.WriteByte(' ')
		}
		inner.WriteString(props)
	}

	if inner.Len() == 0 {
		return "", queryir.PatternErrorf("", "empty relationship bracket")
	}

	var left, right string
	switch r.Direction {
	case queryir.Forward:
		left, right = "-[", "]->"
	case queryir.Backward:
		left, right = "<-[", "]-"
	case queryir.Undirected:
		left, right = "-[", "]-"
	default:
		return "", queryir.PatternErrorf("", "unknown relationship direction %d", r.Direction)
	}
	return left + inner.String() + right + quantifier, nil
}

func checkLength(l *queryir.Length) error {
	if l.Min < 0 {
		return queryir.PatternErrorf("", "relationship length %d is negative", l.Min)
	}
	if l.Max != nil && *l.Max < l.Min {
		return queryir.PatternErrorf("", "relationship length range %d..%d is inverted", l.Min, *l.Max)
	}
	return nil
}

// bracketForm renders the length inside relationship brackets:
// *n, *lo..hi, * (1..), *0.. and *lo..
func bracketForm(l *queryir.Length) string {
	lo := strconv.Itoa(l.Min)
	switch {
	case l.Exact:
		return "*" + lo
	case l.Max == nil && l.Min == 1:
		return "*"
	case l.Max == nil:
		return "*" + lo + ".."
	default:
		return "*" + lo + ".." + strconv.Itoa(*l.Max)
	}
}

// quantifierForm renders the length as a quantifier after the relationship:
// {n}, {lo,hi}, + (1..), * (0..) and {lo,}
func quantifierForm(l *queryir.Length) string {
	lo := strconv.Itoa(l.Min)
	switch {
	case l.Exact:
		return "{" + lo + "}"
	case l.Max == nil && l.Min == 1:
		return "+"
	case l.Max == nil && l.Min == 0:
		return "*"
	case l.Max == nil:
		return "{" + lo + ",}"
	default:
		return "{" + lo + "," + strconv.Itoa(*l.Max) + "}"
	}
}

func selector(s queryir.Selector) (string, error) {
	switch s.Kind {
	case queryir.SelectNone:
		return "", nil
	case queryir.SelectShortest:
		if s.K < 1 {
			return "", queryir.PatternErrorf("", "SHORTEST needs a path count >= 1, got %d", s.K)
		}
		return "SHORTEST " + strconv.Itoa(s.K), nil
	case queryir.SelectAllShortest:
		return "ALL SHORTEST", nil
	case queryir.SelectShortestGroups:
		if s.K < 1 {
			return "", queryir.PatternErrorf("", "SHORTEST GROUPS needs a group count >= 1, got %d", s.K)
		}
		return "SHORTEST " + strconv.Itoa(s.K) + " GROUPS", nil
	case queryir.SelectAny:
		if s.K < 0 {
			return "", queryir.PatternErrorf("", "ANY needs a path count >= 1, got %d", s.K)
		}
		if s.K == 0 {
			return "ANY", nil
		}
		return "ANY " + strconv.Itoa(s.K), nil
	default:
		return "", queryir.PatternErrorf("", "unknown path selector %q", s.Kind)
	}
}

// propMap renders {key: expr, ...} in entry order.
func (c *compilation) propMap(entries []queryir.MapEntry) (string, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		val, err := c.expr(e.Value)
		if err != nil {
			return "", err
		}
		sb.WriteString(Identifier(e.Key))
		sb.WriteString(": ")
		sb.WriteString(val)
	}
	sb.WriteByte('}')
	return sb.String(), nil
}
