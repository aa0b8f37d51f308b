package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/quiver/internal/querycypher"
)

// Record stores a compiled query under name and returns the catalog entry.
//
// The statement row is written with ON CONFLICT DO NOTHING, so a statement
// recorded twice keeps its first seq. The entry is keyed by (name,
// fingerprint): recording it again keeps the entry id and replaces the
// parameter values, access mode, source and seq.
func (s *Store) Record(ctx context.Context, name, source string, q *querycypher.CompiledQuery) (Entry, error) {
	if name == "" {
		return Entry{}, fmt.Errorf("record query: name is required")
	}
	if q == nil {
		return Entry{}, fmt.Errorf("record query %s: no compiled query", name)
	}

	fp, err := q.Fingerprint()
	if err != nil {
		return Entry{}, fmt.Errorf("record query %s: %w", name, err)
	}
	namesJSON, err := marshalNames(q.ParamOrder)
	if err != nil {
		return Entry{}, fmt.Errorf("record query %s: %w", name, err)
	}
	paramsJSON, err := marshalParams(q.Parameters)
	if err != nil {
		return Entry{}, fmt.Errorf("record query %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return Entry{}, fmt.Errorf("record query %s: %w", name, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO statements (fingerprint, text, param_names, seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`, fp, q.Text, namesJSON, seq)
	if err != nil {
		return Entry{}, fmt.Errorf("write statement: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (id, name, fingerprint, access_mode, params, source, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, fingerprint) DO UPDATE SET
			access_mode = excluded.access_mode,
			params = excluded.params,
			source = excluded.source,
			seq = excluded.seq
	`, s.ids.Generate(), name, fp, string(q.AccessMode), paramsJSON, source, seq)
	if err != nil {
		return Entry{}, fmt.Errorf("write entry: %w", err)
	}

	entry, err := scanEntry(tx.QueryRowContext(ctx, entrySelect+`
		WHERE e.name = ? AND e.fingerprint = ?
	`, name, fp))
	if err != nil {
		return Entry{}, fmt.Errorf("read back entry %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit transaction: %w", err)
	}
	return entry, nil
}

// Forget removes every entry recorded under name and reports how many
// were removed. Statements are kept.
func (s *Store) Forget(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE name = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("forget %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("forget %s: %w", name, err)
	}
	return n, nil
}

// nextSeq returns the next value of the catalog's logical clock.
func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM (
			SELECT seq FROM statements
			UNION ALL
			SELECT seq FROM entries
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}
