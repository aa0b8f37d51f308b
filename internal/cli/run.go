package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cobra"

	"github.com/roach88/quiver/internal/ir"
	"github.com/roach88/quiver/internal/neo4jx"
	"github.com/roach88/quiver/internal/planspec"
	"github.com/roach88/quiver/internal/querycypher"
)

// PasswordEnv is read when --password is not given.
const PasswordEnv = "QUIVER_NEO4J_PASSWORD"

// ConnectionOptions holds the Neo4j connection flags.
type ConnectionOptions struct {
	URI      string
	User     string
	Password string
	Database string
}

// QueryExecutor runs one compiled query against a database.
type QueryExecutor interface {
	Execute(ctx context.Context, q *querycypher.CompiledQuery) (*neo4jx.Result, error)
}

// ExecutorFactory connects to a database. The returned close function
// releases the connection.
type ExecutorFactory func(ctx context.Context, conn ConnectionOptions, logger *slog.Logger) (QueryExecutor, func(context.Context) error, error)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	PlanOptions
	ConnectionOptions

	// Connect allows overriding how the executor is created (for testing).
	// If nil, defaults to a neo4j driver.
	Connect ExecutorFactory
}

// Execution is the outcome of running one statement.
type Execution struct {
	Name       string           `json:"name"`
	AccessMode string           `json:"access_mode"`
	Keys       []string         `json:"keys"`
	Records    []map[string]any `json:"records"`
	Error      string           `json:"error,omitempty"`
}

// ExecutionResult holds the outcome of running every statement.
type ExecutionResult struct {
	Executions []Execution `json:"executions"`
	Failed     int         `json:"failed"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <plans-path>",
		Short: "Compile plans and execute them on Neo4j",
		Long: `Compile plan documents and execute each statement on a Neo4j server.

Plans run one after another in load order. Each statement runs in a
managed transaction on a session routed by its access mode: read
statements go to read sessions, write statements to write sessions.
The password may be given with --password or the ` + PasswordEnv + `
environment variable.

Examples:
  quiver run ./plans --uri neo4j://localhost:7687 --user neo4j
  quiver run ./plans/people.yaml --plan adults --param min_age=30
  quiver run ./plans --database movies --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlans(opts, args[0], cmd)
		},
	}

	addPlanFlags(cmd, &opts.PlanOptions)
	addConnectionFlags(cmd, &opts.ConnectionOptions)

	return cmd
}

// addConnectionFlags registers the Neo4j connection flags on cmd.
func addConnectionFlags(cmd *cobra.Command, opts *ConnectionOptions) {
	cmd.Flags().StringVar(&opts.URI, "uri", "neo4j://localhost:7687", "Neo4j connection URI")
	cmd.Flags().StringVar(&opts.User, "user", "neo4j", "Neo4j user")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Neo4j password (default $"+PasswordEnv+")")
	cmd.Flags().StringVar(&opts.Database, "database", "", "database name (default: server default)")
}

// connectNeo4j is the default ExecutorFactory.
func connectNeo4j(ctx context.Context, conn ConnectionOptions, logger *slog.Logger) (QueryExecutor, func(context.Context) error, error) {
	password := conn.Password
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}
	driver, err := neo4j.NewDriverWithContext(conn.URI, neo4j.BasicAuth(conn.User, password, ""))
	if err != nil {
		return nil, nil, fmt.Errorf("create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, nil, fmt.Errorf("connect to %s: %w", conn.URI, err)
	}
	exec := neo4jx.NewExecutor(driver, conn.Database)
	exec.Logger = logger
	return exec, driver.Close, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(commandContext(cmd))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan) // Prevent signal handler leak
		cancel()
	}
}

func runPlans(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(formatter.GetErrWriter(), opts.Verbose)
	ctx, cancel := signalContext(cmd)
	defer cancel()

	docs, err := loadPlans(path, &opts.PlanOptions)
	if err != nil {
		return outputCompileError(formatter, errorCode(err), errorMessage(err))
	}
	compiler, err := newCompiler(&opts.PlanOptions, logger)
	if err != nil {
		return outputCompileError(formatter, ErrCodeBadFlag, err.Error())
	}
	results, err := planspec.CompileAll(ctx, compiler, docs, 0)
	if err != nil {
		return WrapExitError(ExitCommandError, "compilation interrupted", err)
	}
	for _, r := range results {
		if r.Err != nil {
			// Nothing runs unless every plan compiles.
			return outputCompileError(formatter, errorCode(r.Err), fmt.Sprintf("%s: %v", r.Name, r.Err))
		}
	}

	named := make([]namedQuery, len(results))
	for i, r := range results {
		named[i] = namedQuery{name: r.Name, query: r.Query}
	}
	return executeAll(ctx, opts.Connect, opts.ConnectionOptions, named, formatter, logger)
}

type namedQuery struct {
	name  string
	query *querycypher.CompiledQuery
}

// executeAll connects and runs queries in order, stopping at the first
// failure.
func executeAll(ctx context.Context, connect ExecutorFactory, conn ConnectionOptions, queries []namedQuery, formatter *OutputFormatter, logger *slog.Logger) error {
	if connect == nil {
		connect = connectNeo4j
	}
	exec, closeFn, err := connect(ctx, conn, logger)
	if err != nil {
		_ = formatter.Error(ErrCodeConnect, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to connect", err)
	}
	defer func() {
		if closeErr := closeFn(ctx); closeErr != nil {
			logger.Error("error closing driver", "error", closeErr)
		}
	}()

	result := ExecutionResult{Executions: make([]Execution, 0, len(queries))}
	for _, nq := range queries {
		logger.Debug("executing", "name", nq.name, "mode", nq.query.AccessMode)
		ex := Execution{Name: nq.name, AccessMode: string(nq.query.AccessMode), Keys: []string{}, Records: []map[string]any{}}
		res, err := exec.Execute(ctx, nq.query)
		if err != nil {
			ex.Error = err.Error()
			result.Executions = append(result.Executions, ex)
			result.Failed++
			break
		}
		if res.Keys != nil {
			ex.Keys = res.Keys
		}
		if res.Records != nil {
			ex.Records = res.Records
		}
		result.Executions = append(result.Executions, ex)
	}

	return outputExecutions(formatter, result)
}

func outputExecutions(formatter *OutputFormatter, result ExecutionResult) error {
	var exitErr error
	if result.Failed > 0 {
		last := result.Executions[len(result.Executions)-1]
		exitErr = NewExitError(ExitFailure, fmt.Sprintf("%s: %s", last.Name, last.Error))
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if exitErr != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeExecute, Message: exitErr.Error()}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	for _, ex := range result.Executions {
		if ex.Error != "" {
			fmt.Fprintf(w, "✗ %s (%s)\n  %s\n", ex.Name, ex.AccessMode, ex.Error)
			continue
		}
		fmt.Fprintf(w, "✓ %s (%s): %d record(s)\n", ex.Name, ex.AccessMode, len(ex.Records))
		if len(ex.Keys) > 0 {
			fmt.Fprintf(w, "  %s\n", strings.Join(ex.Keys, " | "))
		}
		for _, rec := range ex.Records {
			fmt.Fprintf(w, "  %s\n", formatRecord(ex.Keys, rec))
		}
	}
	return exitErr
}

// formatRecord renders record values in key order, canonical JSON where
// possible.
func formatRecord(keys []string, rec map[string]any) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		data, err := ir.MarshalCanonical(rec[k])
		if err != nil {
			parts[i] = fmt.Sprint(rec[k])
			continue
		}
		parts[i] = string(data)
	}
	return strings.Join(parts, " | ")
}
