// Package store provides SQLite-backed durable storage for benchmark results.
//
// The store is append-only:
//   - Sessions: one record per benchmark invocation, keyed by a UUIDv7
//   - Results: one record per result row, keyed by (session, seq)
//
// Writes are idempotent: a repeated (session, seq) is ignored. Reads are
// ordered by seq so that a session reads back in the order it was written.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Results must belong to a known session
//
// Open records the schema version in user_version and applies any
// migration a database created by an older release is missing.
package store
