package queryir

import (
	"fmt"
	"strings"
)

// BinaryOp is a binary operator. The value is the rendered Cypher token.
type BinaryOp string

const (
	OpEq         BinaryOp = "="
	OpNeq        BinaryOp = "<>"
	OpLt         BinaryOp = "<"
	OpLte        BinaryOp = "<="
	OpGt         BinaryOp = ">"
	OpGte        BinaryOp = ">="
	OpAdd        BinaryOp = "+"
	OpSub        BinaryOp = "-"
	OpMul        BinaryOp = "*"
	OpDiv        BinaryOp = "/"
	OpMod        BinaryOp = "%"
	OpPow        BinaryOp = "^"
	OpAnd        BinaryOp = "AND"
	OpOr         BinaryOp = "OR"
	OpXor        BinaryOp = "XOR"
	OpStartsWith BinaryOp = "STARTS WITH"
	OpEndsWith   BinaryOp = "ENDS WITH"
	OpContains   BinaryOp = "CONTAINS"
	OpIn         BinaryOp = "IN"
	OpRegex      BinaryOp = "=~"
)

// UnaryOp is a unary operator.
type UnaryOp string

const (
	OpNot       UnaryOp = "NOT"
	OpNeg       UnaryOp = "-"
	OpIsNull    UnaryOp = "IS NULL"
	OpIsNotNull UnaryOp = "IS NOT NULL"
)

var binaryOps = map[string]BinaryOp{
	"=": OpEq, "==": OpEq, "eq": OpEq,
	"<>": OpNeq, "!=": OpNeq, "ne": OpNeq,
	"<": OpLt, "lt": OpLt,
	"<=": OpLte, "le": OpLte,
	">": OpGt, "gt": OpGt,
	">=": OpGte, "ge": OpGte,
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod, "^": OpPow,
	"and": OpAnd, "&&": OpAnd,
	"or": OpOr, "||": OpOr,
	"xor": OpXor,
	"starts with": OpStartsWith, "startswith": OpStartsWith,
	"ends with": OpEndsWith, "endswith": OpEndsWith,
	"contains": OpContains,
	"in": OpIn,
	"=~": OpRegex, "matches": OpRegex,
}

var unaryOps = map[string]UnaryOp{
	"not": OpNot, "!": OpNot,
	"-": OpNeg, "neg": OpNeg,
	"is null": OpIsNull, "isnothing": OpIsNull, "isnull": OpIsNull,
	"is not null": OpIsNotNull, "isnotnull": OpIsNotNull,
}

// ParseBinaryOp maps an operator token or host-style alias ("==",
// "startswith", "matches") to a BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, error) {
	if op, ok := binaryOps[normalizeOp(s)]; ok {
		return op, nil
	}
	return "", fmt.Errorf("unknown binary operator %q", s)
}

// ParseUnaryOp maps an operator token or alias ("!", "isnothing") to a UnaryOp.
func ParseUnaryOp(s string) (UnaryOp, error) {
	if op, ok := unaryOps[normalizeOp(s)]; ok {
		return op, nil
	}
	return "", fmt.Errorf("unknown unary operator %q", s)
}

func normalizeOp(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// IsPostfix reports whether the operator follows its operand.
func (op UnaryOp) IsPostfix() bool {
	return op == OpIsNull || op == OpIsNotNull
}
