package neo4jx

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/roach88/quiver/internal/querycypher"
	"github.com/roach88/quiver/internal/queryir"
)

// Session is the part of neo4j.SessionWithContext the executor uses.
type Session interface {
	ExecuteRead(ctx context.Context, work neo4j.ManagedTransactionWork, configurers ...func(*neo4j.TransactionConfig)) (any, error)
	ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork, configurers ...func(*neo4j.TransactionConfig)) (any, error)
	Close(ctx context.Context) error
}

// SessionFactory opens a session with the given configuration.
type SessionFactory func(ctx context.Context, config neo4j.SessionConfig) Session

// FromDriver adapts a driver to a SessionFactory.
func FromDriver(driver neo4j.DriverWithContext) SessionFactory {
	return func(ctx context.Context, config neo4j.SessionConfig) Session {
		return driver.NewSession(ctx, config)
	}
}

// Result holds the collected records of one execution.
type Result struct {
	Keys    []string
	Records []map[string]any
}

// Executor runs compiled queries, one session per query.
//
// A read query runs in a managed read transaction on a read session; a
// write query in a managed write transaction on a write session. Managed
// transactions are retried by the driver on transient failures, so the
// work function only runs the statement and collects its records.
type Executor struct {
	open     SessionFactory
	Database string
	Logger   *slog.Logger
}

// NewExecutor creates an Executor over a driver.
func NewExecutor(driver neo4j.DriverWithContext, database string) *Executor {
	return NewExecutorWithSessions(FromDriver(driver), database)
}

// NewExecutorWithSessions creates an Executor over a session factory.
func NewExecutorWithSessions(open SessionFactory, database string) *Executor {
	return &Executor{
		open:     open,
		Database: database,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Execute runs q and returns its records.
func (e *Executor) Execute(ctx context.Context, q *querycypher.CompiledQuery) (*Result, error) {
	if q == nil {
		return nil, fmt.Errorf("execute: no compiled query")
	}
	config, err := SessionConfig(q.AccessMode, e.Database)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	session := e.open(ctx, config)
	defer session.Close(ctx)

	params := q.Parameters
	if params == nil {
		params = map[string]any{}
	}
	work := func(tx neo4j.ManagedTransaction) (any, error) {
		return collect(ctx, tx, q.Text, params)
	}

	var out any
	if q.AccessMode == queryir.AccessRead {
		out, err = session.ExecuteRead(ctx, work)
	} else {
		out, err = session.ExecuteWrite(ctx, work)
	}
	if err != nil {
		return nil, fmt.Errorf("execute %s query: %w", q.AccessMode, err)
	}

	result, ok := out.(*Result)
	if !ok {
		return nil, fmt.Errorf("execute %s query: unexpected result %T", q.AccessMode, out)
	}
	if e.Logger != nil {
		e.Logger.Debug("executed query",
			"mode", q.AccessMode,
			"database", e.Database,
			"records", len(result.Records),
		)
	}
	return result, nil
}

// collect runs one statement and drains its records.
func collect(ctx context.Context, tx neo4j.ManagedTransaction, text string, params map[string]any) (*Result, error) {
	res, err := tx.Run(ctx, text, params)
	if err != nil {
		return nil, err
	}
	keys, err := res.Keys()
	if err != nil {
		return nil, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := &Result{Keys: keys, Records: make([]map[string]any, len(records))}
	for i, r := range records {
		out.Records[i] = r.AsMap()
	}
	return out, nil
}
