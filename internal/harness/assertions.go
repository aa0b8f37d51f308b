package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/quiver/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Text     string // Statement text for context, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)

	if e.Text != "" {
		fmt.Fprintf(&buf, "\n\nStatement:\n  %s", e.Text)
	}

	return buf.String()
}

// assertTextContains checks that the statement contains a fragment.
func assertTextContains(text string, a Assertion) error {
	if strings.Contains(text, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTextContains,
		Expected: fmt.Sprintf("text containing %q", a.Text),
		Actual:   "not found",
		Text:     text,
	}
}

// assertTextAbsent checks that the statement does not contain a fragment.
func assertTextAbsent(text string, a Assertion) error {
	if !strings.Contains(text, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTextAbsent,
		Expected: fmt.Sprintf("text without %q", a.Text),
		Actual:   "found",
		Text:     text,
	}
}

// assertClauseOrder checks that keywords appear in the given order.
// Keywords don't need to be adjacent; each is searched for after the
// previous match.
func assertClauseOrder(text string, a Assertion) error {
	offset := 0
	for i, kw := range a.Keywords {
		idx := strings.Index(text[offset:], kw)
		if idx < 0 {
			actual := fmt.Sprintf("missing keyword: %s", kw)
			if i > 0 {
				actual = fmt.Sprintf("%s not found after %s", kw, a.Keywords[i-1])
			}
			return &AssertionError{
				Type:     AssertClauseOrder,
				Expected: fmt.Sprintf("keywords in order: %v", a.Keywords),
				Actual:   actual,
				Text:     text,
			}
		}
		offset += idx + len(kw)
	}
	return nil
}

// assertParam checks one parameter binding, compared as canonical JSON.
func assertParam(params map[string]any, a Assertion) error {
	actual, ok := params[a.Name]
	if !ok {
		return &AssertionError{
			Type:     AssertParam,
			Expected: fmt.Sprintf("$%s bound", a.Name),
			Actual:   "not bound",
		}
	}
	if !valuesEqual(actual, a.Value) {
		return &AssertionError{
			Type:     AssertParam,
			Expected: fmt.Sprintf("$%s = %v", a.Name, a.Value),
			Actual:   fmt.Sprintf("$%s = %v", a.Name, actual),
		}
	}
	return nil
}

// assertParamCount checks the number of bound parameters.
func assertParamCount(params map[string]any, a Assertion) error {
	if len(params) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertParamCount,
		Expected: fmt.Sprintf("%d parameters", a.Count),
		Actual:   fmt.Sprintf("%d parameters", len(params)),
	}
}

// valuesEqual compares two values by their canonical JSON encoding, so
// int and int64 (or YAML and Go-built values) of equal content match.
func valuesEqual(actual, expected any) bool {
	a, err := ir.MarshalCanonical(actual)
	if err != nil {
		return false
	}
	e, err := ir.MarshalCanonical(expected)
	if err != nil {
		return false
	}
	return string(a) == string(e)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if assertion.Type == AssertErrorContains {
			if !result.Failed() {
				err = fmt.Errorf("assertion[%d]: error_contains: compilation succeeded", i)
			} else if !strings.Contains(result.ErrorMessage, assertion.Text) {
				err = &AssertionError{
					Type:     AssertErrorContains,
					Expected: fmt.Sprintf("error containing %q", assertion.Text),
					Actual:   result.ErrorMessage,
				}
			}
			if err != nil {
				errors = append(errors, err.Error())
			}
			continue
		}

		if result.Failed() {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %s: compilation failed: %s", i, assertion.Type, result.ErrorMessage))
			continue
		}
		q := result.Query

		switch assertion.Type {
		case AssertTextContains:
			err = assertTextContains(q.Text, assertion)
		case AssertTextAbsent:
			err = assertTextAbsent(q.Text, assertion)
		case AssertClauseOrder:
			err = assertClauseOrder(q.Text, assertion)
		case AssertParam:
			err = assertParam(q.Parameters, assertion)
		case AssertParamCount:
			err = assertParamCount(q.Parameters, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
