package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quiver/internal/ir"
	"github.com/roach88/quiver/internal/planspec"
	"github.com/roach88/quiver/internal/querycypher"
	"github.com/roach88/quiver/internal/queryir"
	"github.com/roach88/quiver/internal/store"
	"github.com/roach88/quiver/internal/testutil"
)

// Harness is the scenario execution engine.
// Each run compiles the scenario's plan, records the result in a private
// in-memory catalog, and checks expectations, assertions and properties.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory catalog for isolation.
// A returned error means the scenario could not be executed; a failed
// compilation is an outcome reported in the Result.
//
// Execution flow:
// 1. Decode the inline plan document
// 2. Compile it with the scenario's options
// 3. Record the compiled query in the catalog
// 4. Check the expect clause, assertions and compiler properties
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	st.SetIDGenerator(testutil.NewSequentialIDs("")) // Stable entry ids across runs

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(ctx, scenario)
}

func (h *Harness) run(ctx context.Context, s *Scenario) (*Result, error) {
	result := NewResult()

	compiler, err := h.compiler(s)
	if err != nil {
		return nil, err
	}

	doc, err := s.document()
	if err != nil {
		var le *planspec.LoadError
		if !errors.As(err, &le) {
			return nil, err
		}
		result.ErrorKind, result.ErrorMessage = classify(err), err.Error()
	} else {
		q, err := compile(ctx, compiler, doc)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			result.ErrorKind, result.ErrorMessage = classify(err), err.Error()
		} else {
			result.Query = q
			entry, err := h.store.Record(ctx, s.Name, "scenario", q)
			if err != nil {
				return nil, fmt.Errorf("failed to record query: %w", err)
			}
			result.Fingerprint = entry.Fingerprint
			result.EntryID = entry.ID

			for _, msg := range checkProperties(ctx, compiler, doc, q, entry) {
				result.AddError(msg)
			}
		}
	}

	h.logger.Info("scenario compiled",
		"scenario", s.Name,
		"error_kind", result.ErrorKind,
		"fingerprint", result.Fingerprint,
	)

	if s.Expect != nil {
		for _, msg := range checkExpect(result, s.Expect) {
			result.AddError(msg)
		}
	}
	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// compiler builds the compiler for a scenario's options.
func (h *Harness) compiler(s *Scenario) (*querycypher.CypherCompiler, error) {
	c := &querycypher.CypherCompiler{Pretty: s.Pretty, Logger: h.logger}
	if s.Mode != "" {
		mode, err := queryir.ParseAccessMode(s.Mode)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		c.Mode = &mode
	}
	return c, nil
}

// document decodes the inline plan. The scenario name is used when the
// plan has none.
func (s *Scenario) document() (planspec.PlanDoc, error) {
	data, err := yaml.Marshal(&s.Plan)
	if err != nil {
		return planspec.PlanDoc{}, fmt.Errorf("scenario %s: encoding plan: %w", s.Name, err)
	}
	docs, err := planspec.ParseYAML(s.Name+".yaml", data, planspec.Options{Params: s.Params})
	if err != nil {
		return planspec.PlanDoc{}, err
	}
	if len(docs) != 1 {
		return planspec.PlanDoc{}, fmt.Errorf("scenario %s: plan must hold exactly one document, got %d", s.Name, len(docs))
	}
	doc := docs[0]
	if doc.Name == "" {
		doc.Name = s.Name
	}
	return doc, nil
}

// compile runs one document through the batch compiler.
func compile(ctx context.Context, compiler *querycypher.CypherCompiler, doc planspec.PlanDoc) (*querycypher.CompiledQuery, error) {
	results, err := planspec.CompileAll(ctx, compiler, []planspec.PlanDoc{doc}, 1)
	if err != nil {
		return nil, err
	}
	return results[0].Query, results[0].Err
}

// classify maps a failure to its error kind.
func classify(err error) string {
	switch {
	case queryir.IsPatternError(err):
		return ErrorKindPattern
	case queryir.IsGrammarError(err):
		return ErrorKindGrammar
	case planspec.IsLoadError(err, planspec.ErrCodeSyntax):
		return ErrorKindSyntax
	default:
		return ErrorKindLoad
	}
}

// checkExpect compares a result against the scenario's expect clause.
func checkExpect(result *Result, expect *ExpectClause) []string {
	var errs []string

	if expect.Error != "" {
		if result.ErrorKind != expect.Error {
			actual := "compiled successfully"
			if result.Failed() {
				actual = fmt.Sprintf("%s error: %s", result.ErrorKind, result.ErrorMessage)
			}
			errs = append(errs, (&AssertionError{
				Type:     "expect.error",
				Expected: expect.Error + " error",
				Actual:   actual,
			}).Error())
		}
		return errs
	}

	if result.Failed() {
		return append(errs, fmt.Sprintf("unexpected %s error: %s", result.ErrorKind, result.ErrorMessage))
	}
	q := result.Query

	if expect.Text != "" && q.Text != expect.Text {
		errs = append(errs, (&AssertionError{
			Type:     "expect.text",
			Expected: expect.Text,
			Actual:   q.Text,
		}).Error())
	}
	if expect.Params != nil {
		want, werr := ir.MarshalCanonical(expect.Params)
		got, gerr := ir.MarshalCanonical(q.Parameters)
		switch {
		case werr != nil:
			errs = append(errs, fmt.Sprintf("expect.params: %v", werr))
		case gerr != nil:
			errs = append(errs, fmt.Sprintf("parameters: %v", gerr))
		case string(want) != string(got):
			errs = append(errs, (&AssertionError{
				Type:     "expect.params",
				Expected: string(want),
				Actual:   string(got),
			}).Error())
		}
	}
	if expect.ParamOrder != nil && !reflect.DeepEqual(expect.ParamOrder, q.ParamOrder) {
		errs = append(errs, (&AssertionError{
			Type:     "expect.param_order",
			Expected: fmt.Sprintf("%v", expect.ParamOrder),
			Actual:   fmt.Sprintf("%v", q.ParamOrder),
		}).Error())
	}
	if expect.Mode != "" && string(q.AccessMode) != expect.Mode {
		errs = append(errs, (&AssertionError{
			Type:     "expect.mode",
			Expected: expect.Mode,
			Actual:   string(q.AccessMode),
		}).Error())
	}
	return errs
}
