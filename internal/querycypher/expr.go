package querycypher

import (
	"strings"

	"github.com/roach88/quiver/internal/ir"
	"github.com/roach88/quiver/internal/queryir"
)

// Operator precedence, loosest first. OR and XOR always render inside
// their own parentheses, so they never need wrapping by a parent.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precPow
	precUnary
	precAtom
)

var binaryPrec = map[queryir.BinaryOp]int{
	queryir.OpOr:         precOr,
	queryir.OpXor:        precOr,
	queryir.OpAnd:        precAnd,
	queryir.OpEq:         precCompare,
	queryir.OpNeq:        precCompare,
	queryir.OpLt:         precCompare,
	queryir.OpLte:        precCompare,
	queryir.OpGt:         precCompare,
	queryir.OpGte:        precCompare,
	queryir.OpStartsWith: precCompare,
	queryir.OpEndsWith:   precCompare,
	queryir.OpContains:   precCompare,
	queryir.OpIn:         precCompare,
	queryir.OpRegex:      precCompare,
	queryir.OpAdd:        precAdd,
	queryir.OpSub:        precAdd,
	queryir.OpMul:        precMul,
	queryir.OpDiv:        precMul,
	queryir.OpMod:        precMul,
	queryir.OpPow:        precPow,
}

// associative operators may chain on the right without parentheses.
var associative = map[queryir.BinaryOp]bool{
	queryir.OpAnd: true,
	queryir.OpAdd: true,
	queryir.OpMul: true,
}

// functionAliases maps host-style function names to Cypher names.
var functionAliases = map[string]string{
	"len": "size",
}

// expr renders an expression tree, registering every parameter.
func (c *compilation) expr(e queryir.Expr) (string, error) {
	text, _, err := c.exprPrec(e)
	return text, err
}

// operand renders e and parenthesizes it when it binds looser than the
// surrounding operator requires.
func (c *compilation) operand(e queryir.Expr, minPrec int) (string, error) {
	text, prec, err := c.exprPrec(e)
	if err != nil {
		return "", err
	}
	if prec < minPrec {
		return "(" + text + ")", nil
	}
	return text, nil
}

// exprPrec renders e and reports the precedence of its outermost operator.
func (c *compilation) exprPrec(e queryir.Expr) (string, int, error) {
	switch ex := e.(type) {
	case nil:
		return "", 0, queryir.GrammarErrorf("", "missing expression")
	case queryir.Literal:
		return c.literal(ex)
	case queryir.Variable:
		if ex.Name == "" {
			return "", 0, queryir.GrammarErrorf("", "variable has no name")
		}
		return Identifier(ex.Name), precAtom, nil
	case queryir.Property:
		return c.property(ex)
	case queryir.Param:
		if err := c.params.register(ex.Name, ex.Value); err != nil {
			return "", 0, err
		}
		return "$" + ex.Name, precAtom, nil
	case queryir.FuncCall:
		return c.funcCall(ex)
	case queryir.Binary:
		return c.binary(ex)
	case queryir.Unary:
		return c.unary(ex)
	case queryir.Case:
		return c.caseExpr(ex)
	case queryir.Exists:
		return c.exists(ex)
	case queryir.List:
		items, err := c.exprList(ex.Items)
		if err != nil {
			return "", 0, err
		}
		return "[" + items + "]", precAtom, nil
	case queryir.Map:
		text, err := c.propMap(ex.Entries)
		return text, precAtom, err
	case queryir.HasLabel:
		return c.hasLabel(ex)
	case queryir.Alias:
		return "", 0, queryir.GrammarErrorf("", "alias %q is only allowed as a projection item", ex.Name)
	case queryir.Star:
		return "", 0, queryir.GrammarErrorf("", "* is only allowed as a projection item or count(*)")
	default:
		return "", 0, queryir.GrammarErrorf("", "unsupported expression %T", e)
	}
}

func (c *compilation) literal(l queryir.Literal) (string, int, error) {
	text, err := FormatLiteral(l.Value)
	if err != nil {
		return "", 0, err
	}
	prec := precAtom
	if strings.HasPrefix(text, "-") {
		prec = precUnary
	}
	return text, prec, nil
}

func (c *compilation) property(p queryir.Property) (string, int, error) {
	if p.Key == "" {
		return "", 0, queryir.GrammarErrorf("", "property access has no key")
	}
	target, err := c.operand(p.Target, precAtom)
	if err != nil {
		return "", 0, err
	}
	return target + "." + Identifier(p.Key), precAtom, nil
}

func (c *compilation) funcCall(f queryir.FuncCall) (string, int, error) {
	if f.Name == "" {
		return "", 0, queryir.GrammarErrorf("", "function call has no name")
	}
	name := f.Name
	if alias, ok := functionAliases[strings.ToLower(name)]; ok {
		name = alias
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = Identifier(p)
	}
	name = strings.Join(parts, ".")

	var args string
	if len(f.Args) == 1 && isStar(f.Args[0]) {
		if !strings.EqualFold(name, "count") {
			return "", 0, queryir.GrammarErrorf("", "* argument is only allowed in count(*), not %s", name)
		}
		args = "*"
	} else {
		var err error
		args, err = c.exprList(f.Args)
		if err != nil {
			return "", 0, err
		}
	}
	if f.Distinct {
		args = "DISTINCT " + args
	}
	return name + "(" + args + ")", precAtom, nil
}

func isStar(e queryir.Expr) bool {
	switch e.(type) {
	case queryir.Star, *queryir.Star:
		return true
	}
	return false
}

func (c *compilation) binary(b queryir.Binary) (string, int, error) {
	prec, ok := binaryPrec[b.Op]
	if !ok {
		return "", 0, queryir.GrammarErrorf("", "unsupported binary operator %q", b.Op)
	}

	// Comparisons chain in Cypher (a < b < c), so an equal-precedence
	// operand on either side is wrapped.
	leftMin := prec
	if prec == precCompare {
		leftMin = prec + 1
	}
	rightMin := prec + 1
	if associative[b.Op] {
		rightMin = prec
	}
	if prec == precOr {
		leftMin, rightMin = precAnd, precAnd
	}

	left, err := c.operand(b.Left, leftMin)
	if err != nil {
		return "", 0, err
	}
	right, err := c.operand(b.Right, rightMin)
	if err != nil {
		return "", 0, err
	}

	text := left + " " + string(b.Op) + " " + right
	if prec == precOr {
		return "(" + text + ")", precAtom, nil
	}
	return text, prec, nil
}

func (c *compilation) unary(u queryir.Unary) (string, int, error) {
	switch u.Op {
	case queryir.OpNot:
		operand, err := c.expr(u.Operand)
		if err != nil {
			return "", 0, err
		}
		return "NOT (" + operand + ")", precNot, nil
	case queryir.OpNeg:
		operand, prec, err := c.exprPrec(u.Operand)
		if err != nil {
			return "", 0, err
		}
		if prec <= precUnary {
			operand = "(" + operand + ")"
		}
		return "-" + operand, precUnary, nil
	case queryir.OpIsNull, queryir.OpIsNotNull:
		operand, err := c.operand(u.Operand, precAdd)
		if err != nil {
			return "", 0, err
		}
		return operand + " " + string(u.Op), precCompare, nil
	default:
		return "", 0, queryir.GrammarErrorf("", "unsupported unary operator %q", u.Op)
	}
}

// caseExpr renders CASE [subject] WHEN c THEN e ... [ELSE x] END.
func (c *compilation) caseExpr(k queryir.Case) (string, int, error) {
	if len(k.Branches) == 0 {
		return "", 0, queryir.GrammarErrorf("", "CASE needs at least one WHEN branch")
	}
	var sb strings.Builder
	sb.WriteString("CASE")
	if k.Subject != nil {
		subject, err := c.expr(k.Subject)
		if err != nil {
			return "", 0, err
		}
		sb.WriteByte(' ')
		sb.WriteString(subject)
	}
	for _, br := range k.Branches {
		cond, err := c.expr(br.Cond)
		if err != nil {
			return "", 0, err
		}
		then, err := c.expr(br.Then)
		if err != nil {
			return "", 0, err
		}
		sb.WriteString(" WHEN ")
		sb.WriteString(cond)
		sb.WriteString(" THEN ")
		sb.WriteString(then)
	}
	if k.Else != nil {
		els, err := c.expr(k.Else)
		if err != nil {
			return "", 0, err
		}
		sb.WriteString(" ELSE ")
		sb.WriteString(els)
	}
	sb.WriteString(" END")
	return sb.String(), precAtom, nil
}

// exists renders EXISTS { MATCH pattern [WHERE cond] }.
func (c *compilation) exists(e queryir.Exists) (string, int, error) {
	pattern, err := c.patternSource(e.Pattern)
	if err != nil {
		return "", 0, err
	}
	text := "EXISTS { MATCH " + pattern
	if e.Where != nil {
		where, err := c.expr(e.Where)
		if err != nil {
			return "", 0, err
		}
		text += " WHERE " + where
	}
	return text + " }", precAtom, nil
}

func (c *compilation) hasLabel(h queryir.HasLabel) (string, int, error) {
	if len(h.Labels) == 0 {
		return "", 0, queryir.GrammarErrorf("", "label predicate needs at least one label")
	}
	target, err := c.operand(h.Target, precAtom)
	if err != nil {
		return "", 0, err
	}
	var sb strings.Builder
	sb.WriteString(target)
	for _, l := range h.Labels {
		sb.WriteByte(':')
		sb.WriteString(Identifier(l))
	}
	return sb.String(), precAtom, nil
}

func (c *compilation) exprList(items []queryir.Expr) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		text, err := c.expr(item)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return strings.Join(parts, ", "), nil
}

// isIntegerLiteral reports whether e is a literal integer >= 0.
func isIntegerLiteral(e queryir.Expr) bool {
	lit, ok := e.(queryir.Literal)
	if !ok {
		return false
	}
	v, err := ir.FromGo(lit.Value)
	if err != nil {
		return false
	}
	n, ok := v.(ir.IRInt)
	return ok && n >= 0
}
