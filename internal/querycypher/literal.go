package querycypher

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/quiver/internal/ir"
	"github.com/roach88/quiver/internal/queryir"
)

// FormatLiteral renders a Go or ir value as Cypher literal text.
//
// null, true/false, decimal integers, floats that always carry a decimal
// point, single-quoted strings, [lists] and {maps}. Strings escape only
// backslash and single quote; every other character passes through.
func FormatLiteral(v any) (string, error) {
	irv, err := ir.FromGo(v)
	if err != nil {
		return "", queryir.GrammarErrorf("", "literal: %v", err)
	}
	var sb strings.Builder
	if err := writeLiteral(&sb, irv); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeLiteral(sb *strings.Builder, v ir.IRValue) error {
	switch val := v.(type) {
	case ir.IRNull:
		sb.WriteString("null")
	case ir.IRBool:
		sb.WriteString(strconv.FormatBool(bool(val)))
	case ir.IRInt:
		sb.WriteString(strconv.FormatInt(int64(val), 10))
	case ir.IRFloat:
		s, err := formatFloat(float64(val))
		if err != nil {
			return err
		}
		sb.WriteString(s)
	case ir.IRString:
		sb.WriteString(QuoteString(string(val)))
	case ir.IRArray:
		sb.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := writeLiteral(sb, elem); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case ir.IRObject:
		sb.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(Identifier(k))
			sb.WriteString(": ")
			if err := writeLiteral(sb, val[k]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	default:
		return queryir.GrammarErrorf("", "unsupported literal type %T", v)
	}
	return nil
}

// formatFloat renders the shortest round-tripping decimal and guarantees a
// decimal point so the value stays a float in Cypher.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", queryir.GrammarErrorf("", "non-finite float %v has no literal form", f)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		if !strings.Contains(mant, ".") {
			mant += ".0"
		}
		return mant + "e" + exp, nil
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

// QuoteString single-quotes s, escaping backslash and single quote.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		default:
			sb.WriteByte(s[i])
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// Identifier renders a name, back-quoting it unless it is a simple
// identifier ([A-Za-z_][A-Za-z0-9_]*). Embedded back-quotes are doubled.
func Identifier(name string) string {
	if isSimpleIdentifier(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func isSimpleIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
