package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quiver/internal/planspec"
	"github.com/roach88/quiver/internal/queryir"
)

// LintOptions holds flags for the lint command.
type LintOptions struct {
	*RootOptions
	PlanOptions
	Strict bool // warnings fail the command
}

// PlanLint holds the lint findings for one plan.
type PlanLint struct {
	Name     string   `json:"name"`
	Position string   `json:"position,omitempty"`
	Warnings []string `json:"warnings"`
}

// LintResult holds lint results for every loaded plan.
type LintResult struct {
	Clean    bool       `json:"clean"`
	Plans    []PlanLint `json:"plans"`
	Warnings int        `json:"warnings"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lint <plans-path>",
		Short: "Check plans for likely mistakes without compiling",
		Long: `Load plan documents and report lint findings.

Findings flag plans that compile but probably do not do what was meant:
paging without ORDER BY, cartesian products, unbounded variable-length
relationships, comparisons with NULL. Load errors fail the command;
warnings only fail it with --strict.

Exit codes:
  0 - Plans loaded (and are clean with --strict)
  1 - Warnings found with --strict
  2 - Command error (plans do not load, etc.)

Examples:
  quiver lint ./plans
  quiver lint ./plans --strict --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(opts, args[0], cmd)
		},
	}

	addPlanFlags(cmd, &opts.PlanOptions)
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when any warning is found")

	return cmd
}

func runLint(opts *LintOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	docs, err := loadPlans(path, &opts.PlanOptions)
	if err != nil {
		return outputLintError(formatter, errorCode(err), errorMessage(err))
	}
	formatter.VerboseLog("Loaded %d plan(s) from %s", len(docs), path)

	result := lintPlans(docs, formatter)
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputLintText(formatter, result)
	}

	if opts.Strict && !result.Clean {
		// Lint failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("lint found %d warning(s)", result.Warnings))
	}
	return nil
}

// lintPlans runs the plan linter over every document.
func lintPlans(docs []planspec.PlanDoc, formatter *OutputFormatter) LintResult {
	result := LintResult{Clean: true, Plans: make([]PlanLint, 0, len(docs))}
	for _, d := range docs {
		formatter.VerboseLog("Linting plan: %s", d.Name)
		v := queryir.Validate(d.Plan)
		pl := PlanLint{Name: d.Name, Warnings: v.Warnings}
		if d.Pos.IsValid() {
			pl.Position = d.Pos.String()
		}
		result.Plans = append(result.Plans, pl)
		result.Warnings += len(v.Warnings)
		if !v.Clean {
			result.Clean = false
		}
	}
	return result
}

func outputLintText(formatter *OutputFormatter, result LintResult) {
	if result.Clean {
		fmt.Fprintf(formatter.Writer, "✓ %d plan(s) clean\n", len(result.Plans))
		return
	}

	for _, p := range result.Plans {
		if len(p.Warnings) == 0 {
			continue
		}
		if p.Position != "" {
			fmt.Fprintf(formatter.Writer, "%s (%s)\n", p.Name, p.Position)
		} else {
			fmt.Fprintln(formatter.Writer, p.Name)
		}
		for _, w := range p.Warnings {
			fmt.Fprintf(formatter.Writer, "  warning: %s\n", w)
		}
		fmt.Fprintln(formatter.Writer)
	}
	fmt.Fprintf(formatter.Writer, "%d warning(s) in %d plan(s)\n", result.Warnings, len(result.Plans))
}

// outputLintError outputs an error that stopped linting.
func outputLintError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
