package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/incompat/internal/compiler"
	"github.com/roach88/incompat/internal/ir"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the records loaded from a definitions path.
type LoadResult struct {
	Records   []compiler.LabeledRecord
	FileCount int // Number of CUE files found
}

// IncompatRecords returns the loaded records without labels.
func (r *LoadResult) IncompatRecords() []ir.IncompatRecord {
	return compiler.Records(r.Records)
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads and compiles CUE record definitions from a directory
// (walked recursively) or a single .cue file.
//
// Files in the same directory are unified into one CUE instance, so a
// label may only be declared once per directory. Records are returned in
// directory order, then declaration order.
//
// A nil result means nothing could be loaded (missing path, no files).
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadSpecs(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs path: %v", err)}}
	}

	var cueFiles []string
	if info.IsDir() {
		cueFiles, err = FindCUEFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
	} else if filepath.Ext(path) == ".cue" {
		cueFiles = []string{path}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
	}

	result := &LoadResult{FileCount: len(cueFiles)}
	var errs []error

	for _, group := range groupByDir(cueFiles) {
		records, groupErrs := loadGroup(group, mode)
		result.Records = append(result.Records, records...)
		errs = append(errs, groupErrs...)
		if mode == LoadModeFailFast && len(errs) > 0 {
			return result, errs
		}
	}

	if len(result.Records) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoRecords, Message: "no incompat records found in specs"})
	}

	return result, errs
}

// loadGroup builds the files of one directory as a single instance.
func loadGroup(files []string, mode LoadMode) ([]compiler.LabeledRecord, []error) {
	dir := filepath.Dir(files[0])
	args := make([]string, len(files))
	for i, f := range files {
		args[i] = filepath.Base(f)
	}

	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files in %s: %v", dir, inst.Err)}}
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	records, compileErrs := compiler.CompileRecords(value, mode == LoadModeFailFast)
	errs := make([]error, 0, len(compileErrs))
	for _, err := range compileErrs {
		errs = append(errs, convertCompileError(err))
	}
	return records, errs
}

// groupByDir splits files by parent directory, in sorted directory order.
func groupByDir(files []string) [][]string {
	byDir := make(map[string][]string)
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(f)
		if _, ok := byDir[d]; !ok {
			dirs = append(dirs, d)
		}
		byDir[d] = append(byDir[d], f)
	}
	slices.Sort(dirs)

	groups := make([][]string, len(dirs))
	for i, d := range dirs {
		groups[i] = byDir[d]
	}
	return groups
}

// FindCUEFiles walks the directory and returns all .cue file paths.
// cue.mod directories are skipped.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && info.Name() == "cue.mod" {
			return filepath.SkipDir
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	label := ""
	var recErr *compiler.RecordError
	if errors.As(err, &recErr) {
		label = recErr.Label + ": "
	}

	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s%s: %s", label, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
// Record-level codes reuse the compiler's E2xx validation codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeNoRecords   = "E008" // CUE files contain no records
	ErrCodeStore       = "E009" // Database open/read/write error
	ErrCodeBadVersion  = "E010" // Version argument does not parse
)

// MapFieldToErrorCode maps a compiler error field to an error code.
// Fields look like "target.range", "conflicts.kind", "references[2].url".
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "target" || field == "conflicts":
		return compiler.ErrMissingTarget
	case strings.HasSuffix(field, ".name"):
		return compiler.ErrInvalidCrateName
	case strings.HasSuffix(field, ".range"):
		return compiler.ErrInvalidRange
	case strings.HasSuffix(field, ".kind"):
		return compiler.ErrInvalidKind
	case strings.HasSuffix(field, ".url"):
		return compiler.ErrInvalidLocator
	default:
		return ErrCodeGeneric
	}
}
