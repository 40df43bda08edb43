package ir

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// VersionRange is a parsed version-range expression.
// The expression text is kept verbatim (trimmed) for rendering and storage;
// containment is delegated to semver.Constraints.
type VersionRange struct {
	expr        string
	constraints *semver.Constraints
}

// ParseRange parses a range expression such as "<1.0.7" or ">=1.0.3, <2".
// An invalid expression is a construction-time failure.
func ParseRange(expr string) (VersionRange, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return VersionRange{}, fmt.Errorf("parse range: empty expression")
	}
	c, err := semver.NewConstraint(caretDefault(expr))
	if err != nil {
		return VersionRange{}, fmt.Errorf("parse range %q: %w", expr, err)
	}
	return VersionRange{expr: expr, constraints: c}, nil
}

// caretDefault rewrites comparators that carry no operator as caret
// requirements, so "1.2" means ">=1.2.0, <2.0.0" as in a Cargo manifest.
// Wildcard comparators such as "1.2.*" and hyphen ranges are left alone.
func caretDefault(expr string) string {
	alternatives := strings.Split(expr, "||")
	for i, alt := range alternatives {
		parts := strings.Split(alt, ",")
		for j, part := range parts {
			c := strings.TrimSpace(part)
			if c == "" || !unicode.IsDigit(rune(c[0])) || strings.ContainsAny(c, "*xX") || strings.Contains(c, " - ") {
				continue
			}
			parts[j] = strings.Replace(part, c, "^"+c, 1)
		}
		alternatives[i] = strings.Join(parts, ",")
	}
	return strings.Join(alternatives, "||")
}

// MustParseRange is like ParseRange but panics on error.
// Use only in tests or for static tables known to be valid.
func MustParseRange(expr string) VersionRange {
	r, err := ParseRange(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether v lies within the range.
// The zero VersionRange and a nil version contain nothing.
func (r VersionRange) Contains(v *semver.Version) bool {
	if r.constraints == nil || v == nil {
		return false
	}
	return r.constraints.Check(v)
}

// String returns the range expression as written.
func (r VersionRange) String() string {
	return r.expr
}

// IsZero reports whether the range was never parsed.
func (r VersionRange) IsZero() bool {
	return r.constraints == nil
}

// ParseVersion parses a concrete version like "1.0.3". All three
// components are required; "1.30" and "v1.2.3" are rejected.
func ParseVersion(s string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", s, err)
	}
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParseVersion(s string) *semver.Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Target identifies one side of an incompatibility.
// It is a sealed interface: Crate and Rust are the only implementations.
// Consumers switch over both variants explicitly.
type Target interface {
	fmt.Stringer

	// VersionRange returns the range the target covers.
	VersionRange() VersionRange

	target() // Sealed
}

// Crate identifies a version range of a named package.
type Crate struct {
	Name  string
	Range VersionRange
}

func (Crate) target() {}

// VersionRange returns the crate's range.
func (c Crate) VersionRange() VersionRange { return c.Range }

// String renders the target as crate(<name> <range>).
func (c Crate) String() string {
	return fmt.Sprintf("crate(%s %s)", c.Name, c.Range)
}

// Rust identifies a version range of the toolchain. There is a single
// toolchain axis, so it carries no name.
type Rust struct {
	Range VersionRange
}

func (Rust) target() {}

// VersionRange returns the toolchain range.
func (r Rust) VersionRange() VersionRange { return r.Range }

// String renders the target as rust(<range>).
func (r Rust) String() string {
	return fmt.Sprintf("rust(%s)", r.Range)
}

// NewCrate builds a Crate target, parsing the range expression.
func NewCrate(name, rangeExpr string) (Crate, error) {
	if name == "" {
		return Crate{}, fmt.Errorf("crate target: name is required")
	}
	r, err := ParseRange(rangeExpr)
	if err != nil {
		return Crate{}, fmt.Errorf("crate target %s: %w", name, err)
	}
	return Crate{Name: name, Range: r}, nil
}

// NewRust builds a Rust target, parsing the range expression.
func NewRust(rangeExpr string) (Rust, error) {
	r, err := ParseRange(rangeExpr)
	if err != nil {
		return Rust{}, fmt.Errorf("rust target: %w", err)
	}
	return Rust{Range: r}, nil
}

// Target kind labels used by the CUE, JSON, and SQL forms.
const (
	KindCrate = "crate"
	KindRust  = "rust"
)

// TargetKind returns KindCrate or KindRust. A nil target yields "".
func TargetKind(t Target) string {
	switch t.(type) {
	case Crate:
		return KindCrate
	case Rust:
		return KindRust
	}
	return ""
}

// crateOf unwraps a Crate target. Rust and nil targets report false.
func crateOf(t Target) (Crate, bool) {
	switch t := t.(type) {
	case Crate:
		return t, true
	case Rust:
		return Crate{}, false
	}
	return Crate{}, false
}

// rustOf unwraps a Rust target. Crate and nil targets report false.
func rustOf(t Target) (Rust, bool) {
	switch t := t.(type) {
	case Rust:
		return t, true
	case Crate:
		return Rust{}, false
	}
	return Rust{}, false
}
