// Package store provides a SQLite-backed catalog of compiled queries.
//
// The catalog keeps two tables:
//   - statements: Cypher text and ordered parameter names, keyed by fingerprint
//   - entries: named records pointing at a statement, with the parameter
//     values, access mode and source document they were compiled from
//
// A statement is written once; recording it again under another name only
// adds an entry. Entry order uses a logical seq counter, never timestamps,
// and every listing query is ordered by (name, seq, id) so results are
// identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Parameter values are stored as canonical JSON (internal/ir), so two
// recordings with equal values produce byte-identical rows.
package store
