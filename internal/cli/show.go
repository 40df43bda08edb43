package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/incompat/internal/ir"
	"github.com/roach88/incompat/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	FromDB  bool
	Imports bool
}

// ShowResult is the JSON payload of the show command.
type ShowResult struct {
	Count   int                 `json:"count"`
	Records []ir.IncompatRecord `json:"records"`
}

// ImportsResult is the JSON payload of show --imports.
type ImportsResult struct {
	Imports []store.Import `json:"imports"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Render every known record, or one stored record by id",
		Long: `Render every record from the definitions (--specs) or the database
(--from-db), in order.

With an id (as printed by compile), the single record stored under that
id is read from the database.

Examples:
  incompat show --specs ./defs
  incompat show --from-db --db incompat.db
  incompat show 3f9a... --db incompat.db
  incompat show --imports --db incompat.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runShowRecord(cmd.Context(), opts, args[0], cmd)
			}
			return runShow(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.FromDB, "from-db", false, "read records from the database instead of the definitions")
	cmd.Flags().BoolVar(&opts.Imports, "imports", false, "list imports recorded in the database")

	return cmd
}

func runShow(ctx context.Context, opts *ShowOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Imports {
		return runShowImports(ctx, opts, formatter)
	}

	records, err := loadRecords(ctx, opts.RootOptions, opts.FromDB, readAll)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ShowResult{Count: len(records), Records: records})
	}
	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No records.")
		return nil
	}
	return formatter.Records(records)
}

// runShowRecord renders the stored record with the given content id.
func runShowRecord(ctx context.Context, opts *ShowOptions, id string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.DB); err != nil {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DB))
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	start := time.Now()
	rec, err := st.ReadRecord(ctx, id)
	opts.Logger().LogStoreOperation("read_record", time.Since(start), 1, err)
	if errors.Is(err, store.ErrNotFound) {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("record not found: %s", id))
	}
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(CompiledRecord{ID: id, Record: rec})
	}
	return formatter.Records([]ir.IncompatRecord{rec})
}

func runShowImports(ctx context.Context, opts *ShowOptions, formatter *OutputFormatter) error {
	if _, err := os.Stat(opts.DB); err != nil {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DB))
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	start := time.Now()
	imports, err := st.ReadImports(ctx)
	opts.Logger().LogStoreOperation("read_imports", time.Since(start), len(imports), err)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(ImportsResult{Imports: imports})
	}
	if len(imports) == 0 {
		fmt.Fprintln(formatter.Writer, "No imports.")
		return nil
	}
	for _, imp := range imports {
		fmt.Fprintf(formatter.Writer, "%d  %s  %s  %d record(s)\n", imp.Seq, imp.ID, imp.Source, imp.RecordCount)
	}
	return nil
}
