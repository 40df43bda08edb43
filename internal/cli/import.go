package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/incompat/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Source string // label recorded for the import (default: specs path)
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import [specs]",
		Short: "Import validated records into the database",
		Long: `Validate CUE definitions and store them in the SQLite database (--db).

The import is all-or-nothing. Records already in the database (same
content id) are skipped, so importing the same definitions twice is safe.

Exit codes:
  0 - Imported
  1 - Definitions failed validation; nothing written
  2 - Command error (missing path, database error)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, specsArg(rootOpts, args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", "", "label recorded for this import (default: specs path)")

	return cmd
}

func runImport(ctx context.Context, opts *ImportOptions, specs string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	log := opts.Logger().Component("import")

	loadResult, loadErrors := LoadSpecs(specs, LoadModeCollectAll)
	if loadResult == nil {
		return outputLoadError(formatter, loadErrors[0])
	}
	opts.Logger().LogLoad(specs, len(loadResult.Records), len(loadErrors))

	if errs := validateLoaded(loadResult, loadErrors); len(errs) > 0 {
		return outputValidationErrors(formatter, len(loadResult.Records), errs)
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	source := opts.Source
	if source == "" {
		source = specs
	}

	start := time.Now()
	summary, err := st.WriteRecords(ctx, source, loadResult.IncompatRecords())
	opts.Logger().LogStoreOperation("write_records", time.Since(start), summary.Inserted, err)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	log.Info().
		Str("import_id", summary.ID).
		Str("db", opts.DB).
		Int("inserted", summary.Inserted).
		Int("skipped", summary.Skipped).
		Msg("import committed")

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "✓ Imported %d record(s) into %s (%d already present)\n",
		summary.Inserted, opts.DB, summary.Skipped)
	formatter.VerboseLog("Import id: %s", summary.ID)
	return nil
}
