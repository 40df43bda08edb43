package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/roach88/incompat/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// General validation errors (E200)
	ErrUnsupportedType = "E200" // unsupported value for validation

	// Record errors (E201-E209)
	ErrInvalidCrateName   = "E201" // crate name empty or not an identifier
	ErrInvalidRange       = "E202" // range missing or unparsable
	ErrInvalidKind        = "E203" // unknown target or reference kind
	ErrInvalidLocator     = "E204" // reference locator not an absolute URI
	ErrDuplicateReference = "E205" // same reference cited twice
	ErrSelfConflict       = "E206" // target and conflicts are the same
	ErrDuplicateRecord    = "E207" // structurally identical record declared twice
	ErrMissingTarget      = "E208" // target or conflicts side missing
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled record against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch rec := v.(type) {
	case *ir.IncompatRecord:
		return validateRecord(rec)
	case ir.IncompatRecord:
		return validateRecord(&rec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type: %T", v),
			Code:    ErrUnsupportedType,
		}}
	}
}

// ValidateSet validates each record and reports structurally identical
// records declared more than once. labels name the records for messages;
// it may be nil.
func ValidateSet(records []ir.IncompatRecord, labels []string) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int)

	label := func(i int) string {
		if i < len(labels) {
			return labels[i]
		}
		return fmt.Sprintf("records[%d]", i)
	}

	for i := range records {
		for _, e := range validateRecord(&records[i]) {
			e.Field = label(i) + "." + e.Field
			errs = append(errs, e)
		}

		id, err := ir.RecordID(records[i])
		if err != nil {
			continue
		}
		if first, ok := seen[id]; ok {
			errs = append(errs, ValidationError{
				Field:   label(i),
				Message: fmt.Sprintf("duplicate of %s", label(first)),
				Code:    ErrDuplicateRecord,
			})
			continue
		}
		seen[id] = i
	}

	return errs
}

// validateRecord validates a single record.
func validateRecord(rec *ir.IncompatRecord) []ValidationError {
	var errs []ValidationError

	errs = append(errs, validateTarget("target", rec.Target)...)
	errs = append(errs, validateTarget("conflicts", rec.Conflicting)...)

	// E206: a record must relate two different things
	if rec.Target != nil && rec.Conflicting != nil &&
		ir.TargetKind(rec.Target) == ir.TargetKind(rec.Conflicting) &&
		rec.Target.String() == rec.Conflicting.String() {
		errs = append(errs, ValidationError{
			Field:   "conflicts",
			Message: fmt.Sprintf("%s conflicts with itself", rec.Target),
			Code:    ErrSelfConflict,
		})
	}

	seenRefs := make(map[ir.RefType]int)
	for i, ref := range rec.References {
		field := fmt.Sprintf("references[%d]", i)

		// E203: kind must be one of the three known kinds
		if ref.Kind.Key() == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("unknown reference kind %d", int(ref.Kind)),
				Code:    ErrInvalidKind,
			})
		}

		// E204: locator must be an absolute URI
		if err := checkLocator(ref.Locator); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".url",
				Message: err.Error(),
				Code:    ErrInvalidLocator,
			})
		}

		// E205: each citation once
		if first, ok := seenRefs[ref]; ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate of references[%d]: %s", first, ref),
				Code:    ErrDuplicateReference,
			})
			continue
		}
		seenRefs[ref] = i
	}

	return errs
}

// validateTarget checks one side of a record.
func validateTarget(field string, t ir.Target) []ValidationError {
	var errs []ValidationError

	switch t := t.(type) {
	case ir.Crate:
		// E201: non-empty identifier, no whitespace
		if t.Name == "" || strings.IndexFunc(t.Name, unicode.IsSpace) >= 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("invalid crate name %q", t.Name),
				Code:    ErrInvalidCrateName,
			})
		}
		if t.Range.IsZero() {
			errs = append(errs, ValidationError{
				Field:   field + ".range",
				Message: "range is required",
				Code:    ErrInvalidRange,
			})
		}
	case ir.Rust:
		if t.Range.IsZero() {
			errs = append(errs, ValidationError{
				Field:   field + ".range",
				Message: "range is required",
				Code:    ErrInvalidRange,
			})
		}
	case nil:
		// E208: both sides are mandatory
		errs = append(errs, ValidationError{
			Field:   field,
			Message: field + " is required",
			Code:    ErrMissingTarget,
		})
	}

	return errs
}
