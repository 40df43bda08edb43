package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/incompat/internal/compiler"
	"github.com/roach88/incompat/internal/ir"
	"github.com/roach88/incompat/internal/registry"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledRecord is one record in compile output.
type CompiledRecord struct {
	Label  string            `json:"label"`
	ID     string            `json:"id"`
	Record ir.IncompatRecord `json:"record"`
}

// CompilationResult is the compile output: records in declaration order.
type CompilationResult struct {
	Version string           `json:"version"`
	Records []CompiledRecord `json:"records"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	RecordCount    int
	RustConflicts  int
	WithReason     int
	ReferenceCount int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [specs]",
		Short: "Compile CUE definitions to JSON records",
		Long: `Compile CUE incompatibility definitions to the JSON record form.

Each record carries its CUE label and its content-addressed id. The
output file can be queried directly (show, affects, conflicts, rust)
without the CUE sources.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, specsArg(rootOpts, args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specs string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadSpecs(specs, LoadModeCollectAll)
	if loadResult == nil {
		return outputLoadError(formatter, loadErrors[0])
	}
	opts.Logger().LogLoad(specs, len(loadResult.Records), len(loadErrors))

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specs)
	for _, rec := range loadResult.Records {
		formatter.VerboseLog("Compiling record: %s", rec.Label)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result, err := buildCompilationResult(loadResult.Records)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}
	stats := calculateStats(result)

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeRecordsToFile(result, opts.Output); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, stats, opts.Output)
}

// buildCompilationResult attaches ids to the loaded records.
func buildCompilationResult(records []compiler.LabeledRecord) (*CompilationResult, error) {
	result := &CompilationResult{
		Version: ir.RecordVersion,
		Records: make([]CompiledRecord, 0, len(records)),
	}
	for _, r := range records {
		id, err := ir.RecordID(r.Record)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Label, err)
		}
		result.Records = append(result.Records, CompiledRecord{Label: r.Label, ID: id, Record: r.Record})
	}
	return result, nil
}

// calculateStats computes summary statistics from compilation result.
func calculateStats(result *CompilationResult) CompilationStats {
	records := make([]ir.IncompatRecord, len(result.Records))
	for i, c := range result.Records {
		records[i] = c.Record
	}
	reg := registry.New(records)

	stats := CompilationStats{
		RecordCount:   reg.Len(),
		RustConflicts: reg.Count(registry.HasRustConflicts()),
	}
	for _, rec := range reg.All() {
		if rec.HasReason() {
			stats.WithReason++
		}
		stats.ReferenceCount += len(rec.References)
	}

	return stats
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, stats CompilationStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d record(s), %d rust conflict(s), %d reference(s)\n\n",
		stats.RecordCount, stats.RustConflicts, stats.ReferenceCount)

	for _, c := range result.Records {
		fmt.Fprintf(w, "  %s: %s\n", c.Label, c.Record.Summary())
	}
	fmt.Fprintln(w)

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote records to %s\n", outputFile)
	}

	return nil
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	failure := NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseLoadError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}

		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseLoadError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return failure
}

// parseLoadError extracts error code and message from an error.
func parseLoadError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeRecordsToFile writes the compilation result as indented JSON.
func writeRecordsToFile(result *CompilationResult, filename string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// readRecordsFile reads a file written by compile -o.
func readRecordsFile(filename string) (*CompilationResult, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var result CompilationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	if result.Version != ir.RecordVersion {
		return nil, fmt.Errorf("unsupported record version %q (want %q)", result.Version, ir.RecordVersion)
	}
	return &result, nil
}
