package dsl

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/roach88/quiver/internal/queryir"
)

// Parser turns DSL text into plan nodes. It is safe for concurrent use.
type Parser struct {
	params map[string]any
}

// New returns a parser that binds $name references to params[name].
// A reference to a name missing from params is a ParseError.
func New(params map[string]any) *Parser {
	return &Parser{params: params}
}

func parse[G any](p *participle.Parser[G], src string) (*G, error) {
	tree, err := p.ParseString("", src)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, &ParseError{Input: src, Pos: perr.Position().Offset, Message: perr.Message()}
		}
		return nil, &ParseError{Input: src, Message: err.Error()}
	}
	return tree, nil
}

// Expr parses a boolean or value expression.
func (p *Parser) Expr(src string) (queryir.Expr, error) {
	tree, err := parse(exprParser, src)
	if err != nil {
		return nil, err
	}
	return p.binder(src).expr(tree)
}

// Pattern parses a path pattern or a chain. Patterns become
// queryir.Pattern; chains stay queryir.Chain and are flattened at compile
// time.
func (p *Parser) Pattern(src string) (queryir.PatternSource, error) {
	tree, err := parse(patternParser, src)
	if err != nil {
		return nil, err
	}
	return p.binder(src).patternSource(tree)
}

// Projection parses a RETURN or WITH item: *, expr, or expr AS name.
func (p *Parser) Projection(src string) (queryir.Node, error) {
	tree, err := parse(projectionParser, src)
	if err != nil {
		return nil, err
	}
	if tree.Star {
		if tree.Alias != "" {
			return nil, &ParseError{Input: src, Message: "* cannot be aliased"}
		}
		return queryir.Star{}, nil
	}
	e, err := p.binder(src).expr(tree.Expr)
	if err != nil {
		return nil, err
	}
	if tree.Alias != "" {
		return queryir.Alias{Expr: e, Name: tree.Alias}, nil
	}
	return e, nil
}

// SortItem parses an ORDER BY item: expr [ASC|DESC].
func (p *Parser) SortItem(src string) (queryir.SortItem, error) {
	tree, err := parse(sortParser, src)
	if err != nil {
		return queryir.SortItem{}, err
	}
	e, err := p.binder(src).expr(tree.Expr)
	if err != nil {
		return queryir.SortItem{}, err
	}
	item := queryir.SortItem{Expr: e}
	switch strings.ToUpper(tree.Order) {
	case "ASC":
		item.Order = queryir.SortAsc
	case "DESC":
		item.Order = queryir.SortDesc
	}
	return item, nil
}

// SetItem parses a SET item: v.key = expr, v = expr, v += expr, or v:Label.
func (p *Parser) SetItem(src string) (queryir.Node, error) {
	tree, err := parse(setParser, src)
	if err != nil {
		return nil, err
	}
	b := p.binder(src)
	if len(tree.Labels) > 0 {
		if len(tree.Keys) > 0 {
			return nil, b.errorAt(tree.Pos.Offset, "labels are set on a variable, not a property")
		}
		return queryir.LabelAssignment{Variable: tree.Variable, Labels: tree.Labels}, nil
	}

	target := propertyPath(tree.Variable, tree.Keys)
	value, err := b.expr(tree.Value)
	if err != nil {
		return nil, err
	}
	merge := tree.Op == "+="
	if merge && len(tree.Keys) > 0 {
		return nil, b.errorAt(tree.Pos.Offset, "+= needs a variable target")
	}
	return queryir.Assignment{Target: target, Value: value, Merge: merge}, nil
}

// RemoveItem parses a REMOVE item: v.key or v:Label.
func (p *Parser) RemoveItem(src string) (queryir.Node, error) {
	tree, err := parse(removeParser, src)
	if err != nil {
		return nil, err
	}
	b := p.binder(src)
	switch {
	case len(tree.Labels) > 0 && len(tree.Keys) == 0:
		return queryir.LabelAssignment{Variable: tree.Variable, Labels: tree.Labels}, nil
	case len(tree.Keys) > 0 && len(tree.Labels) == 0:
		return propertyPath(tree.Variable, tree.Keys), nil
	default:
		return nil, b.errorAt(tree.Pos.Offset, "REMOVE takes v.key or v:Label")
	}
}

func propertyPath(variable string, keys []string) queryir.Expr {
	var e queryir.Expr = queryir.Variable{Name: variable}
	for _, k := range keys {
		e = queryir.Property{Target: e, Key: k}
	}
	return e
}

func (p *Parser) binder(src string) *binder {
	return &binder{input: src, params: p.params}
}
