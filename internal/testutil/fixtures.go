// Package testutil provides shared fixtures and deterministic generators for tests.
package testutil

import "github.com/roach88/incompat/internal/ir"

// FailureDerive returns the quote rename incompatibility:
// failure_derive <1.0.7 breaks against quote >=1.0.3.
//
// A fresh value is built on every call so tests never share state.
func FailureDerive() ir.IncompatRecord {
	return ir.NewRecord(
		ir.Crate{Name: "failure_derive", Range: ir.MustParseRange("<1.0.7")},
		ir.Crate{Name: "quote", Range: ir.MustParseRange(">=1.0.3")},
		"Broken by rename of quote::_rt to quote::_private in 1.0.3",
		ir.Bug("https://github.com/withoutboats/failure_derive/issues/13"),
		ir.Bug("https://github.com/rust-lang-nursery/failure/issues/342"),
		ir.PullRequest("https://github.com/rust-lang-nursery/failure/pull/343"),
		ir.PullRequest("https://github.com/rust-lang-nursery/failure/pull/345"),
		ir.Commit("https://github.com/dtolnay/quote/commit/41543890aa76f4f8046fffac536b9445275aab26"),
	)
}

// FailureBadRust returns the documented minimum toolchain of failure_derive:
// failure_derive <1.0.7 requires rust >=1.31.
func FailureBadRust() ir.IncompatRecord {
	return ir.NewRecord(
		ir.Crate{Name: "failure_derive", Range: ir.MustParseRange("<1.0.7")},
		ir.Rust{Range: ir.MustParseRange("<1.31")},
		"Documented minimum supported rust",
		ir.Commit("https://github.com/rust-lang-nursery/failure/commit/996f919f1e1741b08673b15f893221694097cc9f"),
	)
}

// SerdeBare returns a record with neither reason nor references.
func SerdeBare() ir.IncompatRecord {
	return ir.NewRecord(
		ir.Crate{Name: "serde_derive", Range: ir.MustParseRange("<1.0.20")},
		ir.Crate{Name: "syn", Range: ir.MustParseRange(">=2")},
		"",
	)
}

// Records returns the standard fixture set in a fixed order.
func Records() []ir.IncompatRecord {
	return []ir.IncompatRecord{FailureDerive(), FailureBadRust(), SerdeBare()}
}
