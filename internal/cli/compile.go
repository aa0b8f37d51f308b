package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quiver/internal/ir"
	"github.com/roach88/quiver/internal/planspec"
	"github.com/roach88/quiver/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	PlanOptions
	Output  string // output file path
	Catalog string // catalog database to record into
	Workers int
}

// CompiledPlan is one successfully compiled plan.
type CompiledPlan struct {
	Name        string         `json:"name"`
	Text        string         `json:"text"`
	Parameters  map[string]any `json:"parameters"`
	ParamOrder  []string       `json:"param_order"`
	AccessMode  string         `json:"access_mode"`
	Fingerprint string         `json:"fingerprint"`
	CatalogID   string         `json:"catalog_id,omitempty"`
}

// PlanFailure is one plan that did not compile.
type PlanFailure struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CompilationResult holds the outcome of compiling every loaded plan.
type CompilationResult struct {
	Plans    []CompiledPlan `json:"plans"`
	Failures []PlanFailure  `json:"failures,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <plans-path>",
		Short: "Compile plan documents to Cypher",
		Long: `Compile YAML or CUE plan documents to parameterized Cypher.

The path may be a single .yaml/.yml/.cue file or a directory of them.
Every plan is compiled; failures are reported per plan. With --catalog,
compiled statements are recorded in a SQLite catalog.

Examples:
  quiver compile ./plans
  quiver compile ./plans/people.yaml --plan adults --param min_age=30
  quiver compile ./plans --mode write --pretty
  quiver compile ./plans --catalog ./quiver.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	addPlanFlags(cmd, &opts.PlanOptions)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "record compiled statements in this SQLite catalog")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "concurrent compilations (0 = unbounded)")

	return cmd
}

// addPlanFlags registers the plan-loading flags on cmd.
func addPlanFlags(cmd *cobra.Command, opts *PlanOptions) {
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "override a plan parameter (name=value, repeatable)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "force access mode (read|write)")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "put each top-level clause on its own line")
	cmd.Flags().StringVar(&opts.Plan, "plan", "", "only the plan with this name")
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	docs, err := loadPlans(path, &opts.PlanOptions)
	if err != nil {
		return outputCompileError(formatter, errorCode(err), errorMessage(err))
	}
	formatter.VerboseLog("Loaded %d plan(s) from %s", len(docs), path)

	compiler, err := newCompiler(&opts.PlanOptions, newLogger(formatter.GetErrWriter(), opts.Verbose))
	if err != nil {
		return outputCompileError(formatter, ErrCodeBadFlag, err.Error())
	}

	results, err := planspec.CompileAll(ctx, compiler, docs, opts.Workers)
	if err != nil {
		return WrapExitError(ExitCommandError, "compilation interrupted", err)
	}

	result, err := collectResults(results)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error())
	}

	if opts.Catalog != "" && len(result.Plans) > 0 {
		if err := recordPlans(ctx, opts.Catalog, path, results, result); err != nil {
			return outputCompileError(formatter, ErrCodeCatalog, err.Error())
		}
		formatter.VerboseLog("Recorded %d statement(s) in %s", len(result.Plans), opts.Catalog)
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	if len(result.Failures) > 0 {
		return outputCompileFailures(formatter, result)
	}
	return outputCompileSuccess(formatter, result, opts.Output)
}

// collectResults splits batch results into compiled plans and failures.
func collectResults(results []planspec.Result) (*CompilationResult, error) {
	out := &CompilationResult{Plans: []CompiledPlan{}}
	for _, r := range results {
		if r.Err != nil {
			out.Failures = append(out.Failures, PlanFailure{
				Name:    r.Name,
				Code:    errorCode(r.Err),
				Message: r.Err.Error(),
			})
			continue
		}
		fp, err := r.Query.Fingerprint()
		if err != nil {
			return nil, fmt.Errorf("fingerprint %s: %w", r.Name, err)
		}
		order := r.Query.ParamOrder
		if order == nil {
			order = []string{}
		}
		out.Plans = append(out.Plans, CompiledPlan{
			Name:        r.Name,
			Text:        r.Query.Text,
			Parameters:  r.Query.Parameters,
			ParamOrder:  order,
			AccessMode:  string(r.Query.AccessMode),
			Fingerprint: fp,
		})
	}
	return out, nil
}

// recordPlans stores every compiled plan in the catalog at dbPath and
// fills in the catalog ids.
func recordPlans(ctx context.Context, dbPath, source string, results []planspec.Result, out *CompilationResult) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer st.Close()

	ids := make(map[string]string, len(out.Plans))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		entry, err := st.Record(ctx, r.Name, source, r.Query)
		if err != nil {
			return fmt.Errorf("record %s: %w", r.Name, err)
		}
		ids[r.Name] = entry.ID
	}
	for i := range out.Plans {
		out.Plans[i].CatalogID = ids[out.Plans[i].Name]
	}
	return nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d plan(s)\n\n", len(result.Plans))
	writePlans(formatter, result.Plans)

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote compiled plans to %s\n", outputFile)
	}
	return nil
}

func writePlans(formatter *OutputFormatter, plans []CompiledPlan) {
	for _, p := range plans {
		fmt.Fprintf(formatter.Writer, "%s (%s)\n", p.Name, p.AccessMode)
		for _, line := range strings.Split(p.Text, "\n") {
			fmt.Fprintf(formatter.Writer, "  %s\n", line)
		}
		if len(p.ParamOrder) > 0 {
			params, err := ir.MarshalCanonical(p.Parameters)
			if err != nil {
				params = []byte(fmt.Sprint(p.Parameters))
			}
			fmt.Fprintf(formatter.Writer, "  params: %s\n", params)
		}
		if p.CatalogID != "" {
			fmt.Fprintf(formatter.Writer, "  catalog: %s\n", p.CatalogID)
		}
		fmt.Fprintln(formatter.Writer)
	}
}

// outputCompileError outputs a single error that stopped compilation.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileFailures outputs per-plan compilation failures.
func outputCompileFailures(formatter *OutputFormatter, result *CompilationResult) error {
	exitErr := NewExitError(ExitCommandError, fmt.Sprintf("compilation failed for %d plan(s)", len(result.Failures)))

	if formatter.Format == "json" {
		first := result.Failures[0]
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    first.Code,
				Message: fmt.Sprintf("%s: %s", first.Name, first.Message),
			},
			Data: result, // Include all failures and successes in data
		}); err != nil {
			return err
		}
		return exitErr
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, f := range result.Failures {
		fmt.Fprintf(formatter.Writer, "%s\n  %s: %s\n\n", f.Name, f.Code, f.Message)
	}
	if len(result.Plans) > 0 {
		fmt.Fprintf(formatter.Writer, "Compiled %d other plan(s):\n\n", len(result.Plans))
		writePlans(formatter, result.Plans)
	}
	return exitErr
}

// writeResultToFile writes the compiled plans to a file as indented JSON.
func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling plans: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
