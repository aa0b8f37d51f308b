package queryir

// PatternSource is an argument that renders as a graph pattern: a Pattern
// or a Chain.
type PatternSource interface {
	Node
	patternSource()
}

// PatternElement is a NodePattern or RelPattern.
type PatternElement interface {
	patternElement()
}

// Pattern is an alternating node/relationship sequence. A valid pattern has
// an odd number of elements, starting and ending with a node.
type Pattern struct {
	PathVar  string
	Selector Selector
	Elements []PatternElement
}

// NodePattern is (Variable:Label {Props}). Every field is optional.
type NodePattern struct {
	Variable string
	Label    string
	Props    []MapEntry
}

// Direction is the orientation of a relationship.
type Direction int

const (
	Forward Direction = iota
	Backward
	Undirected
)

// String returns the chain operator for the direction.
func (d Direction) String() string {
	switch d {
	case Forward:
		return ">>"
	case Backward:
		return "<<"
	case Undirected:
		return "--"
	default:
		return "?"
	}
}

// RelPattern is a relationship between two nodes.
//
// Quantified selects the quantifier rendering of Length ({n}, {lo,hi}, +, *)
// placed after the relationship; otherwise Length renders inside the
// brackets (*n, *lo..hi).
type RelPattern struct {
	Variable   string
	Type       string
	Direction  Direction
	Length     *Length
	Quantified bool
	Props      []MapEntry
}

// Length is the traversal length of a relationship. Exact lengths render
// as a single count; otherwise Min..Max with a nil Max meaning unbounded.
type Length struct {
	Min   int
	Max   *int
	Exact bool
}

// Exactly returns an exact(n) length.
func Exactly(n int) *Length {
	return &Length{Min: n, Max: &n, Exact: true}
}

// Between returns a range(lo, hi) length.
func Between(lo, hi int) *Length {
	return &Length{Min: lo, Max: &hi}
}

// AtLeast returns an unbounded range(lo, ∞) length.
func AtLeast(lo int) *Length {
	return &Length{Min: lo}
}

// Unbounded reports whether the length has no upper bound.
func (l *Length) Unbounded() bool {
	return l != nil && l.Max == nil
}

// SelectorKind is a path selector.
type SelectorKind string

const (
	SelectNone           SelectorKind = ""
	SelectShortest       SelectorKind = "shortest"
	SelectAllShortest    SelectorKind = "all_shortest"
	SelectShortestGroups SelectorKind = "shortest_groups"
	SelectAny            SelectorKind = "any"
)

// Selector restricts which matching paths are returned. K is the path count
// for SelectShortest and SelectShortestGroups (required, >= 1) and for
// SelectAny (optional; 0 renders plain ANY).
type Selector struct {
	Kind SelectorKind
	K    int
}

func (Pattern) node()          {}
func (Pattern) patternSource() {}

func (NodePattern) patternElement() {}
func (RelPattern) patternElement()  {}

// NewPattern builds a pattern from alternating elements.
func NewPattern(elems ...PatternElement) Pattern {
	return Pattern{Elements: elems}
}
