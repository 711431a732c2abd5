// Package store provides SQLite-backed persistence for the document vault
// and its audit log.
//
// Two tables:
//   - documents: sealed bodies keyed by name. Re-upload of a name replaces
//     the row (name is the identity key; see the vault package).
//   - traces: append-only audit log. Rows are inserted, listed, and never
//     updated or deleted - no such statement exists in this package.
//
// Trace rows carry a UUID id and a monotonic seq for stable ordering;
// neither participates in the record's proof.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//   - Single writer connection: SQLite supports one writer at a time, and
//     limiting the pool to one connection serializes trace appends
package store
