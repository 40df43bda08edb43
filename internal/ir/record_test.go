package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAffectsCrate(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		assert.True(t, failureDerive().AffectsCrate("failure_derive"))
		assert.True(t, failureBadRust().AffectsCrate("failure_derive"))
	})

	t.Run("mismatch", func(t *testing.T) {
		assert.False(t, failureDerive().AffectsCrate("failure_deriv"))
		assert.False(t, failureBadRust().AffectsCrate("failure_deriv"))
	})

	t.Run("case sensitive", func(t *testing.T) {
		assert.False(t, failureDerive().AffectsCrate("Failure_Derive"))
	})

	t.Run("rust target never affects a crate", func(t *testing.T) {
		rec := NewRecord(Rust{Range: MustParseRange("<1.31")}, Crate{Name: "quote", Range: MustParseRange("*")}, "")
		assert.False(t, rec.AffectsCrate("quote"))
		assert.False(t, rec.AffectsCrate(""))
	})

	t.Run("ignores range", func(t *testing.T) {
		rec := NewRecord(Crate{Name: "serde", Range: MustParseRange("<0.0.1")}, Rust{Range: MustParseRange("<1.0")}, "")
		assert.True(t, rec.AffectsCrate("serde"))
	})
}

func TestAffects(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		assert.True(t, failureDerive().Affects("failure_derive", MustParseVersion("1.0.3")))
		assert.True(t, failureBadRust().Affects("failure_derive", MustParseVersion("1.0.3")))
	})

	t.Run("mismatch", func(t *testing.T) {
		assert.False(t, failureDerive().Affects("failure_derive", MustParseVersion("1.0.7")))
		assert.False(t, failureBadRust().Affects("failure_derive", MustParseVersion("1.0.7")))
	})

	t.Run("wrong name in range", func(t *testing.T) {
		assert.False(t, failureDerive().Affects("quote", MustParseVersion("1.0.3")))
	})

	t.Run("nil version", func(t *testing.T) {
		assert.False(t, failureDerive().Affects("failure_derive", nil))
	})
}

func TestHasConflicts(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		assert.True(t, failureDerive().HasConflicts("quote"))
	})

	t.Run("mismatch", func(t *testing.T) {
		assert.False(t, failureDerive().HasConflicts("quot"))
		assert.False(t, failureBadRust().HasConflicts("quot"))
		assert.False(t, failureBadRust().HasConflicts("quote"))
	})

	t.Run("target side is not examined", func(t *testing.T) {
		assert.False(t, failureDerive().HasConflicts("failure_derive"))
	})
}

func TestConflicts(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		assert.True(t, failureDerive().Conflicts("quote", MustParseVersion("1.0.3")))
	})

	t.Run("mismatch", func(t *testing.T) {
		assert.False(t, failureDerive().Conflicts("quote", MustParseVersion("1.0.2")))
		assert.False(t, failureBadRust().Conflicts("quote", MustParseVersion("1.0.2")))
		assert.False(t, failureBadRust().Conflicts("quote", MustParseVersion("1.0.3")))
	})

	t.Run("target side is not examined", func(t *testing.T) {
		assert.False(t, failureDerive().Conflicts("failure_derive", MustParseVersion("1.0.3")))
	})
}

func TestHasRustConflicts(t *testing.T) {
	assert.True(t, failureBadRust().HasRustConflicts())
	assert.False(t, failureDerive().HasRustConflicts())

	bare := NewRecord(Crate{Name: "a", Range: MustParseRange("*")}, Rust{Range: MustParseRange("*")}, "")
	assert.True(t, bare.HasRustConflicts(), "reason and references do not matter")
}

func TestRustConflicts(t *testing.T) {
	assert.True(t, failureBadRust().RustConflicts(MustParseVersion("1.30.0")))
	assert.False(t, failureBadRust().RustConflicts(MustParseVersion("1.31.0")))
	assert.False(t, failureBadRust().RustConflicts(nil))
	assert.False(t, failureDerive().RustConflicts(MustParseVersion("1.30.0")))
}

func TestRustConflictsScenario(t *testing.T) {
	rec := failureBadRust()

	assert.True(t, rec.HasRustConflicts())
	assert.True(t, rec.RustConflicts(MustParseVersion("1.30.0")))
	assert.False(t, rec.RustConflicts(MustParseVersion("1.31.0")))
	for _, name := range []string{"quote", "failure_derive", "rust", ""} {
		assert.False(t, rec.HasConflicts(name), name)
	}
}

func TestCrateConflictScenario(t *testing.T) {
	rec := failureDerive()

	assert.True(t, rec.Affects("failure_derive", MustParseVersion("1.0.3")))
	assert.False(t, rec.Affects("failure_derive", MustParseVersion("1.0.7")))
	assert.True(t, rec.Conflicts("quote", MustParseVersion("1.0.3")))
	assert.False(t, rec.Conflicts("quote", MustParseVersion("1.0.2")))
	assert.False(t, rec.HasRustConflicts())
}

func TestZeroRecordIsTotal(t *testing.T) {
	var rec IncompatRecord
	v := MustParseVersion("1.0.0")

	assert.False(t, rec.AffectsCrate("x"))
	assert.False(t, rec.Affects("x", v))
	assert.False(t, rec.HasConflicts("x"))
	assert.False(t, rec.Conflicts("x", v))
	assert.False(t, rec.HasRustConflicts())
	assert.False(t, rec.RustConflicts(v))
}

func TestNewRecordCopiesReferences(t *testing.T) {
	refs := []RefType{Bug("https://example.com/1")}
	rec := NewRecord(Crate{Name: "a", Range: MustParseRange("*")}, Rust{Range: MustParseRange("*")}, "", refs...)

	refs[0] = Commit("https://example.com/changed")

	assert.Equal(t, Bug("https://example.com/1"), rec.References[0])
}
