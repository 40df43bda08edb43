package ir

// failureDerive is the quote rename incompatibility, built fresh per test.
func failureDerive() IncompatRecord {
	return NewRecord(
		Crate{Name: "failure_derive", Range: MustParseRange("<1.0.7")},
		Crate{Name: "quote", Range: MustParseRange(">=1.0.3")},
		"Broken by rename of quote::_rt to quote::_private in 1.0.3",
		Bug("https://github.com/withoutboats/failure_derive/issues/13"),
		Bug("https://github.com/rust-lang-nursery/failure/issues/342"),
		PullRequest("https://github.com/rust-lang-nursery/failure/pull/343"),
		PullRequest("https://github.com/rust-lang-nursery/failure/pull/345"),
		Commit("https://github.com/dtolnay/quote/commit/41543890aa76f4f8046fffac536b9445275aab26"),
	)
}

// failureBadRust is the documented minimum toolchain of failure_derive.
func failureBadRust() IncompatRecord {
	return NewRecord(
		Crate{Name: "failure_derive", Range: MustParseRange("<1.0.7")},
		Rust{Range: MustParseRange("<1.31")},
		"Documented minimum supported rust",
		Commit("https://github.com/rust-lang-nursery/failure/commit/996f919f1e1741b08673b15f893221694097cc9f"),
	)
}
