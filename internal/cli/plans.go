package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quiver/internal/planspec"
	"github.com/roach88/quiver/internal/querycypher"
	"github.com/roach88/quiver/internal/queryir"
)

// Error code constants - unified across all CLI commands.
// Load and document codes are shared with planspec.
const (
	ErrCodeGeneric     = planspec.ErrCodeGeneric  // Generic/unknown error
	ErrCodeNotFound    = planspec.ErrCodeNotFound // Path not found
	ErrCodeWriteFailed = "E007"                   // File write error
	ErrCodeBadFlag     = "E008"                   // Invalid flag value

	// Compilation errors
	ErrCodeGrammar = "E301" // Plan violates the clause grammar
	ErrCodePattern = "E302" // Malformed pattern or chain

	// Catalog errors
	ErrCodeCatalog      = "E401" // Catalog could not be opened or written
	ErrCodeEntryMissing = "E402" // No catalog entry matches the reference

	// Execution errors
	ErrCodeConnect = "E501" // Driver could not be created
	ErrCodeExecute = "E502" // Statement failed on the server
)

// PlanOptions holds the flags shared by commands that load plans.
type PlanOptions struct {
	Params []string // k=v overrides
	Mode   string   // "", "read" or "write"
	Pretty bool
	Plan   string // only this plan name when set
}

// parseParams decodes k=v flags. Values are read as YAML scalars, so
// 21 is an integer, true a bool and anything else a string.
func parseParams(kvs []string) (map[string]any, error) {
	params := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		name, raw, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q: want name=value", kv)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", kv, err)
		}
		params[name] = v
	}
	return params, nil
}

// loadPlans loads plan documents from path with the --param overrides
// applied, narrowed to --plan when set.
func loadPlans(path string, opts *PlanOptions) ([]planspec.PlanDoc, error) {
	params, err := parseParams(opts.Params)
	if err != nil {
		return nil, &planspec.LoadError{Code: ErrCodeBadFlag, Message: err.Error()}
	}
	docs, err := planspec.Load(path, planspec.Options{Params: params})
	if err != nil {
		return nil, err
	}
	if opts.Plan == "" {
		return docs, nil
	}
	for _, d := range docs {
		if d.Name == opts.Plan {
			return []planspec.PlanDoc{d}, nil
		}
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	sort.Strings(names)
	return nil, &planspec.LoadError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("plan %q not found (have %s)", opts.Plan, strings.Join(names, ", ")),
	}
}

// newCompiler builds a compiler from the --mode and --pretty flags.
func newCompiler(opts *PlanOptions, logger *slog.Logger) (*querycypher.CypherCompiler, error) {
	c := querycypher.NewCypherCompiler()
	c.Pretty = opts.Pretty
	if logger != nil {
		c.Logger = logger
	}
	if opts.Mode != "" {
		mode, err := queryir.ParseAccessMode(opts.Mode)
		if err != nil {
			return nil, err
		}
		c.Mode = &mode
	}
	return c, nil
}

// errorCode maps an error to its CLI error code.
func errorCode(err error) string {
	var loadErr *planspec.LoadError
	switch {
	case errors.As(err, &loadErr):
		return loadErr.Code
	case queryir.IsPatternError(err):
		return ErrCodePattern
	case queryir.IsGrammarError(err):
		return ErrCodeGrammar
	default:
		return ErrCodeGeneric
	}
}

// errorMessage returns the error text without a load error's code prefix.
func errorMessage(err error) string {
	var loadErr *planspec.LoadError
	if errors.As(err, &loadErr) {
		if loadErr.Pos.IsValid() {
			return loadErr.Pos.String() + ": " + loadErr.Message
		}
		return loadErr.Message
	}
	return err.Error()
}
