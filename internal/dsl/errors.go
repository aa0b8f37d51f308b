package dsl

import (
	"errors"
	"fmt"
)

// ParseError reports DSL text that could not be parsed or bound.
type ParseError struct {
	// Input is the text being parsed.
	Input string

	// Pos is the byte offset of the offending token.
	Pos int

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: offset %d: %s", e.Input, e.Pos, e.Message)
}

// IsParseError returns true if the error is a ParseError.
// Uses errors.As to handle wrapped errors.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
