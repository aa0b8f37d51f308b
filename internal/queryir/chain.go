package queryir

// ChainNode is a ChainTerm or a ChainLink.
type ChainNode interface {
	chainNode()
}

// ChainTerm is one operand of a chain. Terms alternate between nodes (Name
// is a label) and relationships (Name is a type) once the chain is
// flattened.
type ChainTerm struct {
	Variable string
	Name     string
	Length   *Length
	Props    []MapEntry
}

// ChainLink joins two chain subtrees with a direction operator.
type ChainLink struct {
	Op    Direction
	Left  ChainNode
	Right ChainNode
}

// Chain is the operator-tree form of a pattern:
//
//	a::Person >> KNOWS >> b::Person
//
// is ChainLink{Forward, ChainLink{Forward, a, KNOWS}, b}.
type Chain struct {
	PathVar  string
	Selector Selector
	Root     ChainNode
}

func (ChainTerm) chainNode() {}
func (ChainLink) chainNode() {}

func (Chain) node()          {}
func (Chain) patternSource() {}

// Term is a shorthand for a node or relationship term.
func Term(variable, name string) ChainTerm {
	return ChainTerm{Variable: variable, Name: name}
}

// Link folds terms left to right with one operator:
// Link(Forward, a, r, b) is a >> r >> b.
func Link(op Direction, first ChainNode, rest ...ChainNode) ChainNode {
	acc := first
	for _, n := range rest {
		acc = ChainLink{Op: op, Left: acc, Right: n}
	}
	return acc
}

// Flatten walks the chain in order and returns the equivalent Pattern.
//
// Terms at even positions become nodes and terms at odd positions become
// quantified relationships. The operator on each side of a relationship
// determines its direction; the two sides must agree.
func (c Chain) Flatten() (Pattern, error) {
	if c.Root == nil {
		return Pattern{}, PatternErrorf("", "empty chain")
	}
	var terms []ChainTerm
	var ops []Direction
	if err := flattenChain(c.Root, &terms, &ops); err != nil {
		return Pattern{}, err
	}
	if len(terms)%2 == 0 {
		return Pattern{}, PatternErrorf("", "chain has %d elements; a relationship needs a node on both sides", len(terms))
	}

	elems := make([]PatternElement, 0, len(terms))
	for i, t := range terms {
		if i%2 == 0 {
			if t.Length != nil {
				return Pattern{}, PatternErrorf("", "node %q at position %d cannot carry a length", describeTerm(t), i)
			}
			elems = append(elems, NodePattern{Variable: t.Variable, Label: t.Name, Props: t.Props})
			continue
		}
		left, right := ops[i-1], ops[i]
		if left != right {
			return Pattern{}, PatternErrorf("", "relationship %q has conflicting directions %s and %s", describeTerm(t), left, right)
		}
		elems = append(elems, RelPattern{
			Variable:   t.Variable,
			Type:       t.Name,
			Direction:  left,
			Length:     t.Length,
			Quantified: true,
			Props:      t.Props,
		})
	}
	return Pattern{PathVar: c.PathVar, Selector: c.Selector, Elements: elems}, nil
}

func flattenChain(n ChainNode, terms *[]ChainTerm, ops *[]Direction) error {
	switch v := n.(type) {
	case ChainTerm:
		*terms = append(*terms, v)
	case *ChainTerm:
		*terms = append(*terms, *v)
	case ChainLink:
		return flattenLink(v, terms, ops)
	case *ChainLink:
		return flattenLink(*v, terms, ops)
	case nil:
		return PatternErrorf("", "chain contains an empty operand")
	default:
		return PatternErrorf("", "unsupported chain node %T", n)
	}
	return nil
}

func flattenLink(l ChainLink, terms *[]ChainTerm, ops *[]Direction) error {
	if err := flattenChain(l.Left, terms, ops); err != nil {
		return err
	}
	*ops = append(*ops, l.Op)
	return flattenChain(l.Right, terms, ops)
}

func describeTerm(t ChainTerm) string {
	switch {
	case t.Variable != "" && t.Name != "":
		return t.Variable + ":" + t.Name
	case t.Name != "":
		return t.Name
	default:
		return t.Variable
	}
}
