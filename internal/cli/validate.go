package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/incompat/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Records int                        `json:"records"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [specs]",
		Short: "Validate record definitions",
		Long: `Validate CUE incompatibility records without writing anything.

Checks kinds, range syntax, and reference URLs, then runs the
record rules: named crates, no self-conflicts, no duplicate references,
no duplicate records. Every problem is reported, not just the first.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, specsArg(rootOpts, args), cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specs string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, loadErrors := LoadSpecs(specs, LoadModeCollectAll)
	if loadResult == nil {
		return outputLoadError(formatter, loadErrors[0])
	}
	opts.Logger().LogLoad(specs, len(loadResult.Records), len(loadErrors))

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specs)
	for _, rec := range loadResult.Records {
		formatter.VerboseLog("Validating record: %s", rec.Label)
	}

	validationErrors := validateLoaded(loadResult, loadErrors)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, len(loadResult.Records), validationErrors)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Records: len(loadResult.Records)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d record(s) valid\n", len(loadResult.Records))
	return nil
}

// loadErrorToValidation converts a loader error to a validation error.
func loadErrorToValidation(err error) compiler.ValidationError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return compiler.ValidationError{
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    lineOf(loadErr.Pos),
		}
	}
	return compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeGeneric}
}

// lineOf extracts line number from a token.Pos.
func lineOf(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputLoadError reports a loader failure as a command error (exit 2).
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return commandError(formatter, loadErr.Code, loadErr.Message)
	}
	return commandError(formatter, ErrCodeGeneric, err.Error())
}

// outputValidationErrors outputs multiple validation errors (exit 1).
func outputValidationErrors(formatter *OutputFormatter, records int, errs []compiler.ValidationError) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Records: records, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return failure
}

// ValidateSpecs loads and validates definitions, returning rule violations.
// The error is non-nil only when nothing could be loaded.
func ValidateSpecs(specs string) ([]compiler.ValidationError, error) {
	loadResult, loadErrors := LoadSpecs(specs, LoadModeCollectAll)
	if loadResult == nil {
		return nil, loadErrors[0]
	}

	return validateLoaded(loadResult, loadErrors), nil
}

// validateLoaded lists load errors first (construction failures), then
// rule violations over the records that did compile.
func validateLoaded(loadResult *LoadResult, loadErrors []error) []compiler.ValidationError {
	var errs []compiler.ValidationError
	for _, err := range loadErrors {
		errs = append(errs, loadErrorToValidation(err))
	}
	return append(errs, compiler.ValidateSet(loadResult.IncompatRecords(), compiler.Labels(loadResult.Records))...)
}
