// Package harness runs query scenarios against incompatibility records.
//
// A scenario names CUE definition files and a list of queries, each one of
// the six record predicates, with the matches it expects. The harness
// compiles and validates the definitions, imports them into an in-memory
// store, reads them back into a registry, and evaluates every query.
//
// # Scenario Format
//
//	name: failure_derive
//	description: "failure_derive conflicts with quote and old toolchains"
//	specs:
//	  - failure.cue
//	queries:
//	  - name: derive 1.0.3 is affected
//	    op: affects
//	    crate: failure_derive
//	    version: "1.0.3"
//	    expect:
//	      count: 2
//	      labels: [failure_derive_quote, failure_derive_rust]
//	  - name: quote has known conflicts
//	    op: has_conflicts
//	    crate: quote
//	    expect:
//	      match: true
//
// # Operations
//
//   - affects_crate (crate): target is the crate, any version
//   - affects (crate, version): target is the crate and its range holds version
//   - has_conflicts (crate): conflicting side is the crate
//   - conflicts (crate, version): conflicting side is the crate, range holds version
//   - has_rust_conflicts: conflicting side is the Rust toolchain
//   - rust_conflicts (version): conflicting side is Rust, range holds version
//
// # Deterministic Testing
//
// Import ids come from testutil.SequentialImportIDs and records keep
// declaration order, so snapshots are byte-identical across runs and can be
// compared against golden files (RunWithGolden, or incompat test).
package harness
