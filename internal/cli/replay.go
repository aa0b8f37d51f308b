package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quiver/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	ConnectionOptions
	Catalog string
	DryRun  bool

	// Connect allows overriding how the executor is created (for testing).
	Connect ExecutorFactory
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	return newReplayCommand(&ReplayOptions{RootOptions: rootOpts})
}

func newReplayCommand(opts *ReplayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [id|fingerprint|name ...]",
		Short: "Execute catalog entries on Neo4j",
		Long: `Execute compiled statements recorded in the catalog, with the
parameter values and access mode they were recorded with.

Without arguments every entry runs in catalog order. Each argument is
resolved by id, then fingerprint, then name (latest entry).
With --dry-run the statements are listed and nothing is executed.

Exit codes:
  0 - All statements ran
  1 - A statement failed on the server
  2 - Command error (catalog not found, unknown entry, etc.)

Examples:
  quiver replay --catalog ./quiver.db
  quiver replay --catalog ./quiver.db adults befriend
  quiver replay --catalog ./quiver.db --dry-run --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to SQLite catalog (required)")
	_ = cmd.MarkFlagRequired("catalog")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "list the statements without executing them")
	addConnectionFlags(cmd, &opts.ConnectionOptions)

	return cmd
}

func runReplay(opts *ReplayOptions, refs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(formatter.GetErrWriter(), opts.Verbose)
	ctx, cancel := signalContext(cmd)
	defer cancel()

	catalogOpts := &CatalogOptions{RootOptions: opts.RootOptions, Database: opts.Catalog}
	var entries []store.Entry
	err := withCatalog(catalogOpts, formatter, func(st *store.Store) error {
		if len(refs) == 0 {
			all, err := st.ReadEntries(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read catalog", err)
			}
			entries = all
			return nil
		}
		for _, ref := range refs {
			e, err := lookupEntry(ctx, st, ref, formatter)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		if opts.Format == "json" {
			return formatter.Success(ExecutionResult{Executions: []Execution{}})
		}
		fmt.Fprintln(formatter.Writer, "Catalog is empty.")
		return nil
	}

	if opts.DryRun {
		result := CatalogListResult{Entries: make([]CatalogEntry, len(entries)), Total: len(entries)}
		for i, e := range entries {
			result.Entries[i] = catalogEntry(e)
		}
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "Would execute %d statement(s):\n\n", len(entries))
		for _, e := range result.Entries {
			writeCatalogEntry(formatter, e, true)
		}
		return nil
	}

	queries := make([]namedQuery, len(entries))
	for i, e := range entries {
		queries[i] = namedQuery{name: e.Name, query: e.Query()}
	}
	return executeAll(ctx, opts.Connect, opts.ConnectionOptions, queries, formatter, logger)
}
