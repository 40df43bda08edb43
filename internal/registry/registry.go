package registry

import (
	"iter"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/incompat/internal/ir"
)

// Predicate selects records.
type Predicate func(ir.IncompatRecord) bool

// Registry is an immutable, ordered collection of records.
type Registry struct {
	records []ir.IncompatRecord
}

// New builds a registry over a copy of records, preserving their order.
func New(records []ir.IncompatRecord) *Registry {
	return &Registry{records: slices.Clone(records)}
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Records returns a copy of all records in input order.
func (r *Registry) Records() []ir.IncompatRecord {
	return slices.Clone(r.records)
}

// All iterates over records in input order.
func (r *Registry) All() iter.Seq2[int, ir.IncompatRecord] {
	return func(yield func(int, ir.IncompatRecord) bool) {
		for i, rec := range r.records {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Filter returns the records matching pred, in input order.
// Returns an empty slice (not nil) when nothing matches.
func (r *Registry) Filter(pred Predicate) []ir.IncompatRecord {
	out := []ir.IncompatRecord{}
	for _, rec := range r.records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// First returns the earliest record matching pred.
func (r *Registry) First(pred Predicate) (ir.IncompatRecord, bool) {
	for _, rec := range r.records {
		if pred(rec) {
			return rec, true
		}
	}
	return ir.IncompatRecord{}, false
}

// Count returns how many records match pred.
func (r *Registry) Count(pred Predicate) int {
	n := 0
	for _, rec := range r.records {
		if pred(rec) {
			n++
		}
	}
	return n
}

// AffectsCrate selects records whose target is the named crate.
func AffectsCrate(name string) Predicate {
	return func(rec ir.IncompatRecord) bool { return rec.AffectsCrate(name) }
}

// Affects selects records whose target contains version v of the named crate.
func Affects(name string, v *semver.Version) Predicate {
	return func(rec ir.IncompatRecord) bool { return rec.Affects(name, v) }
}

// HasConflicts selects records that conflict with the named crate.
func HasConflicts(name string) Predicate {
	return func(rec ir.IncompatRecord) bool { return rec.HasConflicts(name) }
}

// Conflicts selects records that conflict with version v of the named crate.
func Conflicts(name string, v *semver.Version) Predicate {
	return func(rec ir.IncompatRecord) bool { return rec.Conflicts(name, v) }
}

// HasRustConflicts selects records that conflict with the toolchain.
func HasRustConflicts() Predicate {
	return func(rec ir.IncompatRecord) bool { return rec.HasRustConflicts() }
}

// RustConflicts selects records that conflict with toolchain version v.
func RustConflicts(v *semver.Version) Predicate {
	return func(rec ir.IncompatRecord) bool { return rec.RustConflicts(v) }
}

// And matches when every predicate matches. And() matches everything.
func And(preds ...Predicate) Predicate {
	return func(rec ir.IncompatRecord) bool {
		for _, p := range preds {
			if !p(rec) {
				return false
			}
		}
		return true
	}
}
