package cli

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/roach88/incompat/internal/ir"
	"github.com/roach88/incompat/internal/registry"
	"github.com/roach88/incompat/internal/store"
)

// QueryOptions holds flags shared by affects, conflicts, and rust.
type QueryOptions struct {
	*RootOptions
	FromDB      bool
	First       bool // report only the first match
	FailOnMatch bool // exit 1 when anything matches
}

// QueryResult is the JSON payload of a query command.
type QueryResult struct {
	Query   string              `json:"query"`
	Count   int                 `json:"count"`
	Matches []ir.IncompatRecord `json:"matches"`
}

// query is a resolved query: a registry predicate plus an optional
// SQL-side prefilter used with --from-db.
type query struct {
	text      string
	predicate registry.Predicate
	prefilter storeQuery
}

func addQueryFlags(cmd *cobra.Command, opts *QueryOptions) {
	cmd.Flags().BoolVar(&opts.FromDB, "from-db", false, "query the database instead of the definitions")
	cmd.Flags().BoolVar(&opts.First, "first", false, "report only the first matching record")
	cmd.Flags().BoolVar(&opts.FailOnMatch, "fail-on-match", false, "exit with status 1 if any record matches")
}

// NewAffectsCommand creates the affects command.
func NewAffectsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "affects <crate> [version]",
		Short: "Find records whose target is a crate",
		Long: `Find records whose target is the named crate.

Without a version, every record naming the crate as its target matches,
regardless of range. With a version, the record's range must contain it.

Examples:
  incompat affects failure_derive
  incompat affects failure_derive 1.0.3 --fail-on-match`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, cmd, func(v *semver.Version) query {
				name := args[0]
				if v == nil {
					return query{
						text:      "affects " + name,
						predicate: registry.AffectsCrate(name),
						prefilter: byTarget(name),
					}
				}
				return query{
					text:      fmt.Sprintf("affects %s %s", name, v),
					predicate: registry.Affects(name, v),
					prefilter: byTarget(name),
				}
			}, args[1:])
		},
	}

	addQueryFlags(cmd, opts)
	return cmd
}

// NewConflictsCommand creates the conflicts command.
func NewConflictsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "conflicts <crate> [version]",
		Short: "Find records that conflict with a crate",
		Long: `Find records whose conflicting side is the named crate.

Without a version, every record naming the crate on its conflicts side
matches. With a version, the conflicts range must contain it.

Examples:
  incompat conflicts quote
  incompat conflicts quote 1.0.3`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, cmd, func(v *semver.Version) query {
				name := args[0]
				if v == nil {
					return query{
						text:      "conflicts " + name,
						predicate: registry.HasConflicts(name),
						prefilter: byConflict(name),
					}
				}
				return query{
					text:      fmt.Sprintf("conflicts %s %s", name, v),
					predicate: registry.Conflicts(name, v),
					prefilter: byConflict(name),
				}
			}, args[1:])
		},
	}

	addQueryFlags(cmd, opts)
	return cmd
}

// NewRustCommand creates the rust command.
func NewRustCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rust [version]",
		Short: "Find records that conflict with the Rust toolchain",
		Long: `Find records whose conflicting side is the Rust toolchain.

With a version, the toolchain range must contain it.

Examples:
  incompat rust
  incompat rust 1.30.0`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, cmd, func(v *semver.Version) query {
				if v == nil {
					return query{text: "rust", predicate: registry.HasRustConflicts()}
				}
				return query{text: fmt.Sprintf("rust %s", v), predicate: registry.RustConflicts(v)}
			}, args)
		},
	}

	addQueryFlags(cmd, opts)
	return cmd
}

func byTarget(name string) storeQuery {
	return func(ctx context.Context, st *store.Store) ([]ir.IncompatRecord, error) {
		return st.ReadRecordsByTarget(ctx, name)
	}
}

func byConflict(name string) storeQuery {
	return func(ctx context.Context, st *store.Store) ([]ir.IncompatRecord, error) {
		return st.ReadRecordsByConflict(ctx, name)
	}
}

// runQuery parses the optional version argument, loads records, and
// reports the matches of the built query.
func runQuery(ctx context.Context, opts *QueryOptions, cmd *cobra.Command, build func(*semver.Version) query, versionArgs []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	var version *semver.Version
	if len(versionArgs) > 0 {
		v, err := ir.ParseVersion(versionArgs[0])
		if err != nil {
			return commandError(formatter, ErrCodeBadVersion, err.Error())
		}
		version = v
	}
	q := build(version)

	source := readAll
	if q.prefilter != nil {
		source = q.prefilter
	}
	records, err := loadRecords(ctx, opts.RootOptions, opts.FromDB, source)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	reg := registry.New(records)
	var matches []ir.IncompatRecord
	if opts.First {
		matches = []ir.IncompatRecord{}
		if rec, ok := reg.First(q.predicate); ok {
			matches = append(matches, rec)
		}
	} else {
		matches = reg.Filter(q.predicate)
	}

	opts.Logger().Debug().
		Str("query", q.text).
		Int("records", reg.Len()).
		Int("matches", len(matches)).
		Msg("query evaluated")

	if err := outputQueryResult(formatter, q.text, matches); err != nil {
		return err
	}

	if opts.FailOnMatch && len(matches) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d known incompatibilit%s", len(matches), plural(len(matches), "y", "ies")))
	}
	return nil
}

func outputQueryResult(formatter *OutputFormatter, text string, matches []ir.IncompatRecord) error {
	if formatter.Format == "json" {
		return formatter.Success(QueryResult{Query: text, Count: len(matches), Matches: matches})
	}

	if len(matches) == 0 {
		fmt.Fprintf(formatter.Writer, "No known incompatibilities (%s).\n", text)
		return nil
	}
	return formatter.Records(matches)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
