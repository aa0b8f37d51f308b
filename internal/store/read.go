package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/quiver/internal/ir"
	"github.com/roach88/quiver/internal/querycypher"
	"github.com/roach88/quiver/internal/queryir"
)

// Statement is a compiled Cypher statement as stored in the catalog.
type Statement struct {
	Fingerprint string
	Text        string
	ParamNames  []string
	Seq         int64
}

// Entry is a named catalog record joined with its statement.
type Entry struct {
	ID          string
	Name        string
	Fingerprint string
	Text        string
	ParamNames  []string
	Params      ir.IRObject
	AccessMode  queryir.AccessMode
	Source      string
	Seq         int64
}

// ParamValues returns the recorded parameter values as plain Go values.
func (e Entry) ParamValues() map[string]any {
	out := make(map[string]any, len(e.Params))
	for k, v := range e.Params {
		out[k] = toGo(v)
	}
	return out
}

// Query rebuilds the compiled query the entry was recorded from.
func (e Entry) Query() *querycypher.CompiledQuery {
	order := make([]string, len(e.ParamNames))
	copy(order, e.ParamNames)
	return &querycypher.CompiledQuery{
		Text:       e.Text,
		Parameters: e.ParamValues(),
		ParamOrder: order,
		AccessMode: e.AccessMode,
	}
}

const entrySelect = `
		SELECT e.id, e.name, e.fingerprint, s.text, s.param_names, e.params, e.access_mode, e.source, e.seq
		FROM entries e
		JOIN statements s ON s.fingerprint = e.fingerprint
`

// ReadStatement retrieves a statement by fingerprint.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadStatement(ctx context.Context, fingerprint string) (Statement, error) {
	var (
		st    Statement
		names string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, text, param_names, seq
		FROM statements
		WHERE fingerprint = ?
	`, fingerprint).Scan(&st.Fingerprint, &st.Text, &names, &st.Seq)
	if err != nil {
		return Statement{}, fmt.Errorf("read statement %s: %w", fingerprint, err)
	}
	st.ParamNames, err = unmarshalNames(names)
	if err != nil {
		return Statement{}, fmt.Errorf("read statement %s: %w", fingerprint, err)
	}
	return st, nil
}

// ReadEntries returns every catalog entry.
// Results are ordered deterministically: ORDER BY name, seq, id COLLATE BINARY.
//
// Returns an empty slice (not nil) if the catalog is empty.
func (s *Store) ReadEntries(ctx context.Context) ([]Entry, error) {
	return s.queryEntries(ctx, entrySelect+`
		ORDER BY e.name COLLATE BINARY ASC, e.seq ASC, e.id COLLATE BINARY ASC
	`)
}

// ReadEntriesByName returns every entry recorded under name, oldest first.
func (s *Store) ReadEntriesByName(ctx context.Context, name string) ([]Entry, error) {
	return s.queryEntries(ctx, entrySelect+`
		WHERE e.name = ?
		ORDER BY e.seq ASC, e.id COLLATE BINARY ASC
	`, name)
}

// Lookup resolves ref as an entry id, a fingerprint or a name, in that
// order. A fingerprint or name shared by several entries resolves to the
// most recently recorded one.
// Returns an error wrapping sql.ErrNoRows if nothing matches.
func (s *Store) Lookup(ctx context.Context, ref string) (Entry, error) {
	for _, column := range []string{"e.id", "e.fingerprint", "e.name"} {
		entry, err := scanEntry(s.db.QueryRowContext(ctx, entrySelect+`
			WHERE `+column+` = ?
			ORDER BY e.seq DESC, e.id COLLATE BINARY DESC
			LIMIT 1
		`, ref))
		if err == nil {
			return entry, nil
		}
		if err != sql.ErrNoRows {
			return Entry{}, fmt.Errorf("lookup %s: %w", ref, err)
		}
	}
	return Entry{}, fmt.Errorf("lookup %s: %w", ref, sql.ErrNoRows)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry scans one entrySelect row. A missing row is returned as
// sql.ErrNoRows unwrapped.
func scanEntry(row rowScanner) (Entry, error) {
	var (
		e      Entry
		names  string
		params string
		mode   string
	)
	err := row.Scan(&e.ID, &e.Name, &e.Fingerprint, &e.Text, &names, &params, &mode, &e.Source, &e.Seq)
	if err == sql.ErrNoRows {
		return Entry{}, err
	}
	if err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	if e.ParamNames, err = unmarshalNames(names); err != nil {
		return Entry{}, err
	}
	if e.Params, err = unmarshalParams(params); err != nil {
		return Entry{}, err
	}
	e.AccessMode = queryir.AccessMode(mode)
	return e, nil
}
