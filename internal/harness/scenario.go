package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quiver/internal/queryir"
)

// Scenario defines a conformance test scenario: one plan document, the
// compiler options to apply, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Plan is an inline plan document in the planspec YAML format
	// (clauses or comprehension, optional params and mode).
	Plan yaml.Node `yaml:"plan"`

	// Params override the plan document's parameter values.
	Params map[string]any `yaml:"params,omitempty"`

	// Mode overrides access-mode inference ("read" or "write").
	Mode string `yaml:"mode,omitempty"`

	// Pretty joins top-level clauses with newlines.
	Pretty bool `yaml:"pretty,omitempty"`

	// Expect specifies the exact compilation outcome.
	// If nil, only assertions are evaluated.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions are partial checks on the compiled query.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies the expected compilation outcome.
// Empty fields are not checked.
type ExpectClause struct {
	// Text is the exact statement text.
	Text string `yaml:"text,omitempty"`

	// Params is the exact parameter mapping, compared as canonical JSON.
	Params map[string]any `yaml:"params,omitempty"`

	// ParamOrder is the exact first-reference parameter order.
	ParamOrder []string `yaml:"param_order,omitempty"`

	// Mode is the expected access mode.
	Mode string `yaml:"mode,omitempty"`

	// Error is the expected failure kind: grammar, pattern, syntax or load.
	Error string `yaml:"error,omitempty"`
}

// Assertion is a partial check on a compilation outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "text_contains": statement text contains Text
	// - "text_absent": statement text does not contain Text
	// - "clause_order": Keywords appear in the text in the given order
	// - "param": parameter Name is bound to Value
	// - "param_count": exactly Count parameters are bound
	// - "error_contains": the failure message contains Text
	Type string `yaml:"type"`

	Text     string   `yaml:"text,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
	Name     string   `yaml:"name,omitempty"`
	Value    any      `yaml:"value,omitempty"`
	Count    int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTextContains  = "text_contains"
	AssertTextAbsent    = "text_absent"
	AssertClauseOrder   = "clause_order"
	AssertParam         = "param"
	AssertParamCount    = "param_count"
	AssertErrorContains = "error_contains"
)

// Error kinds reported in Result.ErrorKind.
const (
	ErrorKindGrammar = "grammar"
	ErrorKindPattern = "pattern"
	ErrorKindSyntax  = "syntax"
	ErrorKindLoad    = "load"
)

var errorKinds = []string{ErrorKindGrammar, ErrorKindPattern, ErrorKindSyntax, ErrorKindLoad}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses one scenario from YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarioFiles returns the YAML files under dir, sorted. A non-empty
// filter is a glob matched against the file name without extension.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Plan.Kind != yaml.MappingNode {
		return fmt.Errorf("plan must be a mapping")
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	if s.Mode != "" {
		if _, err := queryir.ParseAccessMode(s.Mode); err != nil {
			return fmt.Errorf("mode: %w", err)
		}
	}

	if s.Expect != nil {
		if s.Expect.Error != "" && !isErrorKind(s.Expect.Error) {
			return fmt.Errorf("expect.error: unknown kind %q (want one of %v)", s.Expect.Error, errorKinds)
		}
		if s.Expect.Error != "" && (s.Expect.Text != "" || s.Expect.Params != nil || s.Expect.ParamOrder != nil) {
			return fmt.Errorf("expect: error cannot be combined with text, params or param_order")
		}
		if s.Expect.Mode != "" {
			if _, err := queryir.ParseAccessMode(s.Expect.Mode); err != nil {
				return fmt.Errorf("expect.mode: %w", err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTextContains, AssertTextAbsent, AssertErrorContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertClauseOrder:
		if len(a.Keywords) < 2 {
			return fmt.Errorf("assertions[%d]: at least two keywords are required for clause_order", index)
		}
	case AssertParam:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for param", index)
		}
	case AssertParamCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for param_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func isErrorKind(kind string) bool {
	for _, k := range errorKinds {
		if k == kind {
			return true
		}
	}
	return false
}
