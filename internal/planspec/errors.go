package planspec

import (
	"errors"
	"fmt"
)

// Error code constants, shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No plan files found
	ErrCodeLoadFailed  = "E004" // File read or YAML decode failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeInvalidDoc    = "E201" // Missing name or clauses
	ErrCodeUnknownClause = "E202" // Clause key is not a clause kind
	ErrCodeClauseShape   = "E203" // Clause arguments have the wrong shape
	ErrCodeSyntax        = "E204" // DSL text did not parse
	ErrCodeInvalidMode   = "E205" // mode is not read or write
	ErrCodeDuplicateName = "E206" // Two plans share a name
)

// Position locates a document element.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// LoadError represents an error that occurred while loading a plan document.
type LoadError struct {
	Code    string
	Message string
	Pos     Position
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLoadError returns true if err is a LoadError with the given code.
// Uses errors.As to handle wrapped errors.
func IsLoadError(err error, code string) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}

func loadErrorf(code string, pos Position, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}
