package dsl

import (
	"fmt"
	"strings"

	"github.com/roach88/quiver/internal/queryir"
)

// binder converts a parse tree into plan nodes, resolving parameters.
type binder struct {
	input  string
	params map[string]any
}

func (b *binder) errorAt(pos int, format string, args ...any) *ParseError {
	return &ParseError{Input: b.input, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (b *binder) patternSource(ps *patternSource) (queryir.PatternSource, error) {
	var sel queryir.Selector
	if ps.Selector != nil {
		sel = selectorOf(ps.Selector)
	}
	if ps.Chain != nil {
		c, err := b.chain(ps.Chain)
		if err != nil {
			return nil, err
		}
		c.PathVar = ps.PathVar
		c.Selector = sel
		return c, nil
	}
	p, err := b.pathPattern(ps.Pattern)
	if err != nil {
		return nil, err
	}
	p.PathVar = ps.PathVar
	p.Selector = sel
	return p, nil
}

func selectorOf(s *selector) queryir.Selector {
	switch {
	case s.AllShortest:
		return queryir.Selector{Kind: queryir.SelectAllShortest}
	case s.Shortest != nil && s.Groups:
		return queryir.Selector{Kind: queryir.SelectShortestGroups, K: *s.Shortest}
	case s.Shortest != nil:
		return queryir.Selector{Kind: queryir.SelectShortest, K: *s.Shortest}
	default:
		sel := queryir.Selector{Kind: queryir.SelectAny}
		if s.AnyK != nil {
			sel.K = *s.AnyK
		}
		return sel
	}
}

func (b *binder) pathPattern(pp *pathPattern) (queryir.Pattern, error) {
	first, err := b.node(pp.First)
	if err != nil {
		return queryir.Pattern{}, err
	}
	elems := []queryir.PatternElement{first}
	for _, s := range pp.Steps {
		rel, err := b.rel(s.Rel)
		if err != nil {
			return queryir.Pattern{}, err
		}
		node, err := b.node(s.Node)
		if err != nil {
			return queryir.Pattern{}, err
		}
		elems = append(elems, rel, node)
	}
	return queryir.Pattern{Elements: elems}, nil
}

func (b *binder) node(n *nodePattern) (queryir.NodePattern, error) {
	props, err := b.props(n.Props)
	if err != nil {
		return queryir.NodePattern{}, err
	}
	return queryir.NodePattern{Variable: n.Variable, Label: n.Label, Props: props}, nil
}

func (b *binder) rel(r *relPattern) (queryir.RelPattern, error) {
	rp := queryir.RelPattern{Variable: r.Variable, Type: r.Type}
	switch {
	case r.Backward && r.Forward:
		return rp, b.errorAt(r.Pos.Offset, "relationship cannot point both ways")
	case r.Backward:
		rp.Direction = queryir.Backward
	case r.Forward:
		rp.Direction = queryir.Forward
	default:
		rp.Direction = queryir.Undirected
	}

	switch {
	case r.Length != nil && r.Quant != nil:
		return rp, b.errorAt(r.Pos.Offset, "relationship has both a bracket length and a quantifier")
	case r.Length != nil:
		rp.Length = r.Length.length()
	case r.Quant != nil:
		rp.Length = r.Quant.length()
		rp.Quantified = true
	}

	props, err := b.props(r.Props)
	if err != nil {
		return rp, err
	}
	rp.Props = props
	return rp, nil
}

// length maps *, *n, *lo.., *..hi and *lo..hi.
func (l *bracketLen) length() *queryir.Length {
	switch {
	case !l.Range && l.Min != nil:
		return queryir.Exactly(*l.Min)
	case !l.Range:
		return queryir.AtLeast(1)
	}
	lo := 1
	if l.Min != nil {
		lo = *l.Min
	}
	if l.Max == nil {
		return queryir.AtLeast(lo)
	}
	return queryir.Between(lo, *l.Max)
}

// length maps +, *, {n}, {lo,} and {lo,hi}.
func (q *quantifier) length() *queryir.Length {
	switch {
	case q.Plus:
		return queryir.AtLeast(1)
	case q.Star:
		return queryir.AtLeast(0)
	case !q.Comma:
		return queryir.Exactly(*q.Min)
	case q.Max == nil:
		return queryir.AtLeast(*q.Min)
	default:
		return queryir.Between(*q.Min, *q.Max)
	}
}

func (b *binder) chain(c *chain) (queryir.Chain, error) {
	root, err := b.chainTerm(c.First)
	if err != nil {
		return queryir.Chain{}, err
	}
	var acc queryir.ChainNode = root
	for _, l := range c.Links {
		term, err := b.chainTerm(l.Term)
		if err != nil {
			return queryir.Chain{}, err
		}
		acc = queryir.ChainLink{Op: chainOp(l.Op), Left: acc, Right: term}
	}
	return queryir.Chain{Root: acc}, nil
}

func chainOp(op string) queryir.Direction {
	switch op {
	case "<<":
		return queryir.Backward
	case "--":
		return queryir.Undirected
	default:
		return queryir.Forward
	}
}

// chainTerm reads "v::Name", "v::" or a bare "Name".
func (b *binder) chainTerm(t *chainTerm) (queryir.ChainTerm, error) {
	term := queryir.ChainTerm{Name: t.First}
	if t.Bound {
		term = queryir.ChainTerm{Variable: t.First, Name: t.Name}
	}
	if t.Quant != nil {
		term.Length = t.Quant.length()
	}
	props, err := b.props(t.Props)
	if err != nil {
		return term, err
	}
	term.Props = props
	return term, nil
}

func (b *binder) props(m *mapLit) ([]queryir.MapEntry, error) {
	if m == nil {
		return nil, nil
	}
	entries := make([]queryir.MapEntry, len(m.Entries))
	for i, e := range m.Entries {
		v, err := b.expr(e.Value)
		if err != nil {
			return nil, err
		}
		entries[i] = queryir.MapEntry{Key: e.Key, Value: v}
	}
	return entries, nil
}

// Expressions.

func (b *binder) expr(e *expression) (queryir.Expr, error) {
	return b.or(e.Or)
}

func (b *binder) or(o *orExpr) (queryir.Expr, error) {
	acc, err := b.xor(o.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range o.Right {
		right, err := b.xor(r)
		if err != nil {
			return nil, err
		}
		acc = queryir.Binary{Op: queryir.OpOr, Left: acc, Right: right}
	}
	return acc, nil
}

func (b *binder) xor(x *xorExpr) (queryir.Expr, error) {
	acc, err := b.and(x.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range x.Right {
		right, err := b.and(r)
		if err != nil {
			return nil, err
		}
		acc = queryir.Binary{Op: queryir.OpXor, Left: acc, Right: right}
	}
	return acc, nil
}

func (b *binder) and(a *andExpr) (queryir.Expr, error) {
	acc, err := b.not(a.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range a.Right {
		right, err := b.not(r)
		if err != nil {
			return nil, err
		}
		acc = queryir.Binary{Op: queryir.OpAnd, Left: acc, Right: right}
	}
	return acc, nil
}

func (b *binder) not(n *notExpr) (queryir.Expr, error) {
	if n.Not != nil {
		operand, err := b.not(n.Not)
		if err != nil {
			return nil, err
		}
		return queryir.Unary{Op: queryir.OpNot, Operand: operand}, nil
	}
	return b.comparison(n.Cmp)
}

func (b *binder) comparison(c *comparison) (queryir.Expr, error) {
	left, err := b.additive(c.Left)
	if err != nil {
		return nil, err
	}
	switch {
	case c.Tail == nil:
		return left, nil
	case c.Tail.Null != nil:
		op := queryir.OpIsNull
		if c.Tail.Null.Not {
			op = queryir.OpIsNotNull
		}
		return queryir.Unary{Op: op, Operand: left}, nil
	}
	op, err := queryir.ParseBinaryOp(c.Tail.Op)
	if err != nil {
		return nil, b.errorAt(0, "%v", err)
	}
	right, err := b.additive(c.Tail.Right)
	if err != nil {
		return nil, err
	}
	return queryir.Binary{Op: op, Left: left, Right: right}, nil
}

func (b *binder) additive(a *additive) (queryir.Expr, error) {
	acc, err := b.multiplicative(a.Left)
	if err != nil {
		return nil, err
	}
	for _, o := range a.Ops {
		right, err := b.multiplicative(o.Right)
		if err != nil {
			return nil, err
		}
		op := queryir.OpAdd
		if o.Op == "-" {
			op = queryir.OpSub
		}
		acc = queryir.Binary{Op: op, Left: acc, Right: right}
	}
	return acc, nil
}

var mulOps = map[string]queryir.BinaryOp{
	"*": queryir.OpMul,
	"/": queryir.OpDiv,
	"%": queryir.OpMod,
}

func (b *binder) multiplicative(m *multiplicative) (queryir.Expr, error) {
	acc, err := b.power(m.Left)
	if err != nil {
		return nil, err
	}
	for _, o := range m.Ops {
		right, err := b.power(o.Right)
		if err != nil {
			return nil, err
		}
		acc = queryir.Binary{Op: mulOps[o.Op], Left: acc, Right: right}
	}
	return acc, nil
}

func (b *binder) power(p *power) (queryir.Expr, error) {
	acc, err := b.unary(p.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range p.Right {
		right, err := b.unary(r)
		if err != nil {
			return nil, err
		}
		acc = queryir.Binary{Op: queryir.OpPow, Left: acc, Right: right}
	}
	return acc, nil
}

// unary folds negation of a numeric literal into the literal.
func (b *binder) unary(u *unary) (queryir.Expr, error) {
	if u.Neg == nil {
		return b.postfix(u.Postfix)
	}
	operand, err := b.unary(u.Neg)
	if err != nil {
		return nil, err
	}
	if lit, ok := operand.(queryir.Literal); ok {
		switch v := lit.Value.(type) {
		case int64:
			return queryir.Literal{Value: -v}, nil
		case float64:
			return queryir.Literal{Value: -v}, nil
		}
	}
	return queryir.Unary{Op: queryir.OpNeg, Operand: operand}, nil
}

func (b *binder) postfix(p *postfix) (queryir.Expr, error) {
	e, err := b.atom(p.Atom)
	if err != nil {
		return nil, err
	}
	for _, k := range p.Keys {
		e = queryir.Property{Target: e, Key: k}
	}
	if len(p.Labels) > 0 {
		e = queryir.HasLabel{Target: e, Labels: p.Labels}
	}
	return e, nil
}

func (b *binder) atom(a *atom) (queryir.Expr, error) {
	switch {
	case a.Float != nil:
		return queryir.Literal{Value: *a.Float}, nil
	case a.Int != nil:
		return queryir.Literal{Value: *a.Int}, nil
	case a.String != nil:
		return queryir.Literal{Value: *a.String}, nil
	case a.True:
		return queryir.Literal{Value: true}, nil
	case a.False:
		return queryir.Literal{Value: false}, nil
	case a.Null:
		return queryir.Literal{Value: nil}, nil
	case a.Param != "":
		name := strings.TrimPrefix(a.Param, "$")
		value, ok := b.params[name]
		if !ok {
			return nil, b.errorAt(a.Pos.Offset, "parameter $%s is not bound", name)
		}
		return queryir.Param{Name: name, Value: value}, nil
	case a.Case != nil:
		return b.caseExpr(a.Case)
	case a.Exists != nil:
		return b.exists(a.Exists)
	case a.List != nil:
		items, err := b.exprs(a.List.Items)
		if err != nil {
			return nil, err
		}
		return queryir.List{Items: items}, nil
	case a.Map != nil:
		entries, err := b.props(a.Map)
		if err != nil {
			return nil, err
		}
		return queryir.Map{Entries: entries}, nil
	case a.Ref != nil:
		return b.ref(a.Ref)
	case a.Paren != nil:
		return b.expr(a.Paren)
	default:
		return nil, b.errorAt(a.Pos.Offset, "empty expression")
	}
}

// ref is a variable, a property path, or a possibly dotted function call.
func (b *binder) ref(r *ref) (queryir.Expr, error) {
	if r.Call != nil {
		f := queryir.FuncCall{Name: strings.Join(r.Parts, "."), Distinct: r.Call.Distinct}
		if r.Call.Star {
			f.Args = []queryir.Expr{queryir.Star{}}
			return f, nil
		}
		args, err := b.exprs(r.Call.Args)
		if err != nil {
			return nil, err
		}
		f.Args = args
		return f, nil
	}
	return propertyPath(r.Parts[0], r.Parts[1:]), nil
}

func (b *binder) caseExpr(c *caseExpr) (queryir.Expr, error) {
	var k queryir.Case
	if c.Subject != nil {
		subject, err := b.expr(c.Subject)
		if err != nil {
			return nil, err
		}
		k.Subject = subject
	}
	for _, br := range c.Branches {
		cond, err := b.expr(br.Cond)
		if err != nil {
			return nil, err
		}
		then, err := b.expr(br.Then)
		if err != nil {
			return nil, err
		}
		k.Branches = append(k.Branches, queryir.When{Cond: cond, Then: then})
	}
	if c.Else != nil {
		els, err := b.expr(c.Else)
		if err != nil {
			return nil, err
		}
		k.Else = els
	}
	return k, nil
}

func (b *binder) exists(e *existsExpr) (queryir.Expr, error) {
	pattern, err := b.patternSource(e.Pattern)
	if err != nil {
		return nil, err
	}
	ex := queryir.Exists{Pattern: pattern}
	if e.Where != nil {
		where, err := b.expr(e.Where)
		if err != nil {
			return nil, err
		}
		ex.Where = where
	}
	return ex, nil
}

func (b *binder) exprs(in []*expression) ([]queryir.Expr, error) {
	out := make([]queryir.Expr, len(in))
	for i, e := range in {
		v, err := b.expr(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
