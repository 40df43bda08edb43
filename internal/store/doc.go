// Package store provides SQLite-backed persistence for incompatibility records.
//
// The store is an append-only catalogue:
//   - Imports: one row per WriteRecords call (UUIDv7 id, source label)
//   - Records: one row per distinct record, keyed by ir.RecordID
//   - Record references: citation list, one row per reference, by position
//
// # Invariants
//
// Content-addressed identity
//   - records.id is ir.RecordID, so importing the same definitions twice
//     inserts nothing the second time (ON CONFLICT(id) DO NOTHING)
//
// Deterministic order
//   - All reads use ORDER BY seq ASC, id COLLATE BINARY ASC
//   - Reading back yields records in first-import order, which is the order
//     the registry preserves
//
// Construction-time validation
//   - Range expressions are re-parsed on read; a row that no longer parses is
//     reported as an error rather than returned as a half-built record
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
