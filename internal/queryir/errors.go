package queryir

import (
	"errors"
	"fmt"
)

// CompileError is raised when a plan cannot be compiled.
//
// Compilation is all-or-nothing: a CompileError means no text was produced.
type CompileError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Clause is the clause being compiled, if known.
	Clause ClauseKind

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes compile errors.
type ErrorCode string

const (
	// ErrCodeGrammar indicates an argument has the wrong shape for its clause
	// or an expression node is unsupported.
	ErrCodeGrammar ErrorCode = "GRAMMAR_ERROR"

	// ErrCodePattern indicates a malformed pattern: even element count,
	// conflicting chain directions, or an empty relationship bracket.
	ErrCodePattern ErrorCode = "PATTERN_ERROR"
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Clause != "" {
		return fmt.Sprintf("%s: %s (clause=%s)", e.Code, e.Message, e.Clause.Keyword())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// GrammarErrorf builds a GRAMMAR_ERROR.
func GrammarErrorf(clause ClauseKind, format string, args ...any) *CompileError {
	return &CompileError{Code: ErrCodeGrammar, Clause: clause, Message: fmt.Sprintf(format, args...)}
}

// PatternErrorf builds a PATTERN_ERROR.
func PatternErrorf(clause ClauseKind, format string, args ...any) *CompileError {
	return &CompileError{Code: ErrCodePattern, Clause: clause, Message: fmt.Sprintf(format, args...)}
}

// WithClause returns err annotated with clause when it is a CompileError
// that does not carry one yet.
func WithClause(err error, clause ClauseKind) error {
	var ce *CompileError
	if errors.As(err, &ce) && ce.Clause == "" {
		annotated := *ce
		annotated.Clause = clause
		return &annotated
	}
	return err
}

// IsGrammarError returns true if the error is a grammar error.
// Uses errors.As to handle wrapped errors.
func IsGrammarError(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeGrammar
	}
	return false
}

// IsPatternError returns true if the error is a pattern error.
// Uses errors.As to handle wrapped errors.
func IsPatternError(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodePattern
	}
	return false
}
