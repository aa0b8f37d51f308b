package harness

import (
	"github.com/roach88/quiver/internal/querycypher"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expect clause, every assertion and every property hold.
	Pass bool `json:"pass"`

	// Query is the compiled query; nil when compilation failed.
	Query *querycypher.CompiledQuery `json:"query,omitempty"`

	// Fingerprint is the catalog identity of Query.
	Fingerprint string `json:"fingerprint,omitempty"`

	// EntryID is the catalog entry id recorded for Query.
	EntryID string `json:"entry_id,omitempty"`

	// ErrorKind classifies a failed compilation (grammar, pattern, syntax, load).
	ErrorKind string `json:"error_kind,omitempty"`

	// ErrorMessage is the failed compilation's message.
	ErrorMessage string `json:"error_message,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Failed reports whether compilation failed.
func (r *Result) Failed() bool {
	return r.ErrorKind != ""
}
