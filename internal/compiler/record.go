package compiler

import (
	"fmt"
	"net/url"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/incompat/internal/ir"
)

// CompileRecord parses a CUE value into an IncompatRecord.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the record struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`incompat: failure_derive_quote: { ... }`)
//	rec, err := CompileRecord(v.LookupPath(cue.ParsePath("incompat.failure_derive_quote")))
//
// Range expressions and locators are validated here, so a returned record
// is safe to query.
func CompileRecord(v cue.Value) (*ir.IncompatRecord, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	target, err := compileTarget(v, "target")
	if err != nil {
		return nil, err
	}

	conflicting, err := compileTarget(v, "conflicts")
	if err != nil {
		return nil, err
	}

	// Parse reason (optional)
	var reason string
	reasonVal := v.LookupPath(cue.ParsePath("reason"))
	if reasonVal.Exists() {
		reason, err = reasonVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}

	// Parse references (optional, order preserved)
	refs, err := compileReferences(v)
	if err != nil {
		return nil, err
	}

	rec := ir.NewRecord(target, conflicting, reason, refs...)
	return &rec, nil
}

// compileTarget parses the target or conflicts side of a record.
func compileTarget(v cue.Value, field string) (ir.Target, error) {
	tv := v.LookupPath(cue.ParsePath(field))
	if !tv.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}

	kindVal := tv.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return nil, &CompileError{
			Field:   field + ".kind",
			Message: "kind is required (crate or rust)",
			Pos:     tv.Pos(),
		}
	}
	kind, err := kindVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var name string
	nameVal := tv.LookupPath(cue.ParsePath("name"))
	if nameVal.Exists() {
		name, err = nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}

	rangeVal := tv.LookupPath(cue.ParsePath("range"))
	if !rangeVal.Exists() {
		return nil, &CompileError{
			Field:   field + ".range",
			Message: "range is required",
			Pos:     tv.Pos(),
		}
	}
	rangeExpr, err := rangeVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	switch kind {
	case ir.KindCrate:
		if name == "" {
			return nil, &CompileError{
				Field:   field + ".name",
				Message: "crate name is required",
				Pos:     tv.Pos(),
			}
		}
		r, err := ir.ParseRange(rangeExpr)
		if err != nil {
			return nil, &CompileError{Field: field + ".range", Message: err.Error(), Pos: rangeVal.Pos()}
		}
		return ir.Crate{Name: name, Range: r}, nil
	case ir.KindRust:
		if nameVal.Exists() {
			return nil, &CompileError{
				Field:   field + ".name",
				Message: "rust targets are unnamed",
				Pos:     nameVal.Pos(),
			}
		}
		r, err := ir.ParseRange(rangeExpr)
		if err != nil {
			return nil, &CompileError{Field: field + ".range", Message: err.Error(), Pos: rangeVal.Pos()}
		}
		return ir.Rust{Range: r}, nil
	}

	return nil, &CompileError{
		Field:   field + ".kind",
		Message: fmt.Sprintf("unknown kind %q: must be crate or rust", kind),
		Pos:     kindVal.Pos(),
	}
}

// compileReferences parses the optional references list.
func compileReferences(v cue.Value) ([]ir.RefType, error) {
	refsVal := v.LookupPath(cue.ParsePath("references"))
	if !refsVal.Exists() {
		return nil, nil
	}

	iter, err := refsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var refs []ir.RefType
	for i := 0; iter.Next(); i++ {
		rv := iter.Value()
		field := fmt.Sprintf("references[%d]", i)

		kindStr, err := rv.LookupPath(cue.ParsePath("kind")).String()
		if err != nil {
			return nil, &CompileError{Field: field + ".kind", Message: "kind is required (bug, pull, commit)", Pos: rv.Pos()}
		}
		kind, err := ir.ParseRefKind(kindStr)
		if err != nil {
			return nil, &CompileError{Field: field + ".kind", Message: err.Error(), Pos: rv.Pos()}
		}

		locator, err := rv.LookupPath(cue.ParsePath("url")).String()
		if err != nil {
			return nil, &CompileError{Field: field + ".url", Message: "url is required", Pos: rv.Pos()}
		}
		if err := checkLocator(locator); err != nil {
			return nil, &CompileError{Field: field + ".url", Message: err.Error(), Pos: rv.Pos()}
		}

		refs = append(refs, ir.RefType{Kind: kind, Locator: locator})
	}

	return refs, nil
}

// checkLocator requires an absolute URI with a scheme and a host.
func checkLocator(locator string) error {
	u, err := url.Parse(locator)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", locator, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q must be absolute", locator)
	}
	return nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
