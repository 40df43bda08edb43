// Package compiler turns CUE incompatibility definitions into ir records.
//
// Definitions live under the top-level "incompat" struct, one field per record:
//
//	incompat: failure_derive_quote: {
//		target:    {kind: "crate", name: "failure_derive", range: "<1.0.7"}
//		conflicts: {kind: "crate", name: "quote", range: ">=1.0.3"}
//		reason:    "Broken by rename of quote::_rt to quote::_private in 1.0.3"
//		references: [
//			{kind: "bug", url: "https://github.com/withoutboats/failure_derive/issues/13"},
//			{kind: "commit", url: "https://github.com/dtolnay/quote/commit/4154389"},
//		]
//	}
//
// CompileRecord performs construction-time validation (kinds, range
// grammar, locators) and reports *CompileError with a CUE source position.
// Validate and ValidateSet run the semantic rules (E2xx codes) over compiled
// records and collect every violation.
package compiler
