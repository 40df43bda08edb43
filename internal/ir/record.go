package ir

import (
	"slices"

	"github.com/Masterminds/semver/v3"
)

// IncompatRecord asserts that Target conflicts with Conflicting.
// The assertion is directed: "affects" predicates examine only Target,
// "conflicts" predicates examine only Conflicting.
//
// Records are values. Build them with NewRecord (or a loader) and do not
// mutate them afterwards; the registry shares them across readers.
type IncompatRecord struct {
	Target      Target
	Conflicting Target
	Reason      string    // Empty means no reason
	References  []RefType // Citation order; nil and empty are equivalent
}

// NewRecord builds a record, copying refs so the caller keeps no alias.
func NewRecord(target, conflicting Target, reason string, refs ...RefType) IncompatRecord {
	return IncompatRecord{
		Target:      target,
		Conflicting: conflicting,
		Reason:      reason,
		References:  slices.Clone(refs),
	}
}

// AffectsCrate reports whether Target is the named crate, at any version.
// The stored range is ignored; use Affects for a version check.
func (r IncompatRecord) AffectsCrate(name string) bool {
	return crateNamed(r.Target, name)
}

// Affects reports whether version v of the named crate lies in Target.
func (r IncompatRecord) Affects(name string, v *semver.Version) bool {
	return crateContains(r.Target, name, v)
}

// HasConflicts reports whether Conflicting is the named crate, at any version.
func (r IncompatRecord) HasConflicts(name string) bool {
	return crateNamed(r.Conflicting, name)
}

// Conflicts reports whether version v of the named crate lies in Conflicting.
func (r IncompatRecord) Conflicts(name string, v *semver.Version) bool {
	return crateContains(r.Conflicting, name, v)
}

// HasRustConflicts reports whether Conflicting is the toolchain.
func (r IncompatRecord) HasRustConflicts() bool {
	_, ok := rustOf(r.Conflicting)
	return ok
}

// RustConflicts reports whether toolchain version v lies in Conflicting.
func (r IncompatRecord) RustConflicts(v *semver.Version) bool {
	rust, ok := rustOf(r.Conflicting)
	return ok && rust.Range.Contains(v)
}

// HasReason reports whether the record carries an explanation.
func (r IncompatRecord) HasReason() bool {
	return r.Reason != ""
}

func crateNamed(t Target, name string) bool {
	c, ok := crateOf(t)
	return ok && c.Name == name
}

func crateContains(t Target, name string, v *semver.Version) bool {
	c, ok := crateOf(t)
	return ok && c.Name == name && c.Range.Contains(v)
}
