package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quiver/internal/ir"
	"github.com/roach88/quiver/internal/store"
)

// CatalogOptions holds flags for the catalog commands.
type CatalogOptions struct {
	*RootOptions
	Database string
	Name     string // list: only entries with this name
}

// CatalogEntry is the output form of a catalog entry.
type CatalogEntry struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Fingerprint string         `json:"fingerprint"`
	Text        string         `json:"text"`
	ParamNames  []string       `json:"param_names"`
	Params      map[string]any `json:"params"`
	AccessMode  string         `json:"access_mode"`
	Source      string         `json:"source,omitempty"`
	Seq         int64          `json:"seq"`
}

// CatalogListResult holds the catalog list output.
type CatalogListResult struct {
	Entries    []CatalogEntry `json:"entries"`
	Total      int            `json:"total"`
	Statements int64          `json:"statements,omitempty"` // distinct statements in the catalog
}

// ForgetResult holds the catalog forget output.
type ForgetResult struct {
	Name    string `json:"name"`
	Removed int64  `json:"removed"`
}

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the compiled-query catalog",
		Long: `Inspect the SQLite catalog written by "quiver compile --catalog".

Entries are named compiled statements. Statements are stored once per
fingerprint (a hash of text and parameter names) and shared between
entries.

Examples:
  quiver catalog list --db ./quiver.db
  quiver catalog show --db ./quiver.db adults
  quiver catalog forget --db ./quiver.db adults`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite catalog (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List catalog entries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogList(opts, cmd)
		},
	}
	list.Flags().StringVar(&opts.Name, "name", "", "only entries with this name")

	show := &cobra.Command{
		Use:           "show <id|fingerprint|name>",
		Short:         "Show one catalog entry",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogShow(opts, args[0], cmd)
		},
	}

	forget := &cobra.Command{
		Use:           "forget <name>",
		Short:         "Remove every entry with a name",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogForget(opts, args[0], cmd)
		},
	}

	cmd.AddCommand(list, show, forget)
	return cmd
}

// withCatalog opens the catalog, runs fn and closes it.
func withCatalog(opts *CatalogOptions, formatter *OutputFormatter, fn func(*store.Store) error) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeCatalog, fmt.Sprintf("failed to open catalog: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to open catalog", err)
	}
	defer st.Close()
	return fn(st)
}

func runCatalogList(opts *CatalogOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	return withCatalog(opts, formatter, func(st *store.Store) error {
		var (
			entries []store.Entry
			err     error
		)
		if opts.Name != "" {
			entries, err = st.ReadEntriesByName(ctx, opts.Name)
		} else {
			entries, err = st.ReadEntries(ctx)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read catalog", err)
		}

		stats, err := st.Stats(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read catalog", err)
		}

		result := CatalogListResult{
			Entries:    make([]CatalogEntry, len(entries)),
			Total:      len(entries),
			Statements: stats.Statements,
		}
		for i, e := range entries {
			result.Entries[i] = catalogEntry(e)
		}

		if opts.Format == "json" {
			return formatter.Success(result)
		}
		return outputCatalogListText(formatter, result)
	})
}

func runCatalogShow(opts *CatalogOptions, ref string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	return withCatalog(opts, formatter, func(st *store.Store) error {
		entry, err := lookupEntry(ctx, st, ref, formatter)
		if err != nil {
			return err
		}
		out := catalogEntry(entry)
		if opts.Format == "json" {
			return formatter.Success(out)
		}
		writeCatalogEntry(formatter, out, true)
		return nil
	})
}

func runCatalogForget(opts *CatalogOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	return withCatalog(opts, formatter, func(st *store.Store) error {
		n, err := st.Forget(ctx, name)
		if err != nil {
			_ = formatter.Error(ErrCodeCatalog, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to forget entries", err)
		}
		if n == 0 {
			msg := fmt.Sprintf("no catalog entries named %q", name)
			_ = formatter.Error(ErrCodeEntryMissing, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		if opts.Format == "json" {
			return formatter.Success(ForgetResult{Name: name, Removed: n})
		}
		fmt.Fprintf(formatter.Writer, "Removed %d entr%s named %s\n", n, plural(n, "y", "ies"), name)
		return nil
	})
}

// lookupEntry resolves ref and reports a missing entry as E402.
func lookupEntry(ctx context.Context, st *store.Store, ref string, formatter *OutputFormatter) (store.Entry, error) {
	entry, err := st.Lookup(ctx, ref)
	if errors.Is(err, sql.ErrNoRows) {
		msg := fmt.Sprintf("no catalog entry matches %q", ref)
		_ = formatter.Error(ErrCodeEntryMissing, msg, nil)
		return store.Entry{}, NewExitError(ExitCommandError, msg)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeCatalog, err.Error(), nil)
		return store.Entry{}, WrapExitError(ExitCommandError, "failed to read catalog", err)
	}
	return entry, nil
}

// catalogEntry converts a store entry to its output form.
func catalogEntry(e store.Entry) CatalogEntry {
	names := e.ParamNames
	if names == nil {
		names = []string{}
	}
	return CatalogEntry{
		ID:          e.ID,
		Name:        e.Name,
		Fingerprint: e.Fingerprint,
		Text:        e.Text,
		ParamNames:  names,
		Params:      e.ParamValues(),
		AccessMode:  string(e.AccessMode),
		Source:      e.Source,
		Seq:         e.Seq,
	}
}

func outputCatalogListText(formatter *OutputFormatter, result CatalogListResult) error {
	if result.Total == 0 {
		fmt.Fprintln(formatter.Writer, "Catalog is empty.")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "Catalog: %d entr%s\n\n", result.Total, plural(int64(result.Total), "y", "ies"))
	for _, e := range result.Entries {
		writeCatalogEntry(formatter, e, formatter.Verbose)
	}
	return nil
}

// writeCatalogEntry prints one entry; full adds params and source.
func writeCatalogEntry(formatter *OutputFormatter, e CatalogEntry, full bool) {
	w := formatter.Writer
	fmt.Fprintf(w, "[seq=%d] %s (%s) %s\n", e.Seq, e.Name, e.AccessMode, shortFingerprint(e.Fingerprint))
	for _, line := range strings.Split(e.Text, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if full {
		fmt.Fprintf(w, "  id: %s\n", e.ID)
		fmt.Fprintf(w, "  fingerprint: %s\n", e.Fingerprint)
		if len(e.Params) > 0 {
			params, err := ir.MarshalCanonical(e.Params)
			if err != nil {
				params = []byte(fmt.Sprint(e.Params))
			}
			fmt.Fprintf(w, "  params: %s\n", params)
		}
		if e.Source != "" {
			fmt.Fprintf(w, "  source: %s\n", e.Source)
		}
	}
	fmt.Fprintln(w)
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
