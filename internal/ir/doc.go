// Package ir provides the canonical record types for the incompatibility registry.
//
// This package is the foundational layer: all other internal packages import
// ir; ir imports nothing internal. It holds the data model (Target, RefType,
// IncompatRecord), the predicates evaluated against a single record, the
// diagnostic text rendering, and content-addressed record identity.
//
// Key design constraints:
//   - Target is a closed sum type: Crate and Rust are the only variants
//   - Records are values; identity is structural (see RecordID)
//   - Predicates are total: a variant mismatch is false, never an error
//   - All JSON tags use snake_case
package ir
