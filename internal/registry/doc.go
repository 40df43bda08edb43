// Package registry answers collection-level questions over incompatibility records.
//
// A Registry is an ordered, read-only collection of ir.IncompatRecord values.
// Queries are traversals in input order: Filter returns the matching
// subsequence, First returns the earliest match. Nothing is removed or
// mutated by a query, so a Registry built once may be read from any number
// of goroutines without synchronization.
//
// Predicates mirror the record-level entry points:
//
//	reg := registry.New(records)
//	hits := reg.Filter(registry.Affects("failure_derive", v))
//	rec, ok := reg.First(registry.And(registry.AffectsCrate("failure_derive"), registry.HasRustConflicts()))
//
// Loading records (CUE definitions, SQLite) is the job of the compiler and
// store packages; the registry only needs the slice.
package registry
