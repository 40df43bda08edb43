package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/incompat/internal/ir"
)

// RootField is the top-level CUE field holding record definitions.
const RootField = "incompat"

// LabeledRecord is a compiled record together with its CUE label.
type LabeledRecord struct {
	Label  string
	Record ir.IncompatRecord
	Pos    token.Pos
}

// RecordError attributes a compile error to the record label it came from.
type RecordError struct {
	Label string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s.%s: %v", RootField, e.Label, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// CompileRecords compiles every record under the "incompat" field of v,
// in declaration order. With failFast set, compilation stops at the first
// error. A value without an "incompat" field yields no records and no errors.
func CompileRecords(v cue.Value, failFast bool) ([]LabeledRecord, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	root := v.LookupPath(cue.ParsePath(RootField))
	if !root.Exists() {
		return nil, nil
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		records []LabeledRecord
		errs    []error
	)
	for iter.Next() {
		label := iter.Selector().String()
		rec, err := CompileRecord(iter.Value())
		if err != nil {
			errs = append(errs, &RecordError{Label: label, Err: err})
			if failFast {
				return records, errs
			}
			continue
		}
		records = append(records, LabeledRecord{
			Label:  label,
			Record: *rec,
			Pos:    iter.Value().Pos(),
		})
	}

	return records, errs
}

// CompileSource compiles CUE source text. filename is used for positions.
func CompileSource(src []byte, filename string) ([]LabeledRecord, []error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return CompileRecords(v, false)
}

// Labels returns the labels of records, in order.
func Labels(records []LabeledRecord) []string {
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = r.Label
	}
	return labels
}

// Records returns the bare records, in order.
func Records(records []LabeledRecord) []ir.IncompatRecord {
	out := make([]ir.IncompatRecord, len(records))
	for i, r := range records {
		out[i] = r.Record
	}
	return out
}
