package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// targetJSON is the wire form shared by JSON output, CUE definitions, and the store.
type targetJSON struct {
	Kind  string `json:"kind"`
	Name  string `json:"name,omitempty"`
	Range string `json:"range"`
}

type refJSON struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type recordJSON struct {
	Target     targetJSON `json:"target"`
	Conflicts  targetJSON `json:"conflicts"`
	Reason     string     `json:"reason,omitempty"`
	References []refJSON  `json:"references,omitempty"`
}

// NewTarget builds a Target from its kind, name, and range expression.
// Name must be empty for KindRust and non-empty for KindCrate.
func NewTarget(kind, name, rangeExpr string) (Target, error) {
	switch kind {
	case KindCrate:
		return NewCrate(name, rangeExpr)
	case KindRust:
		if name != "" {
			return nil, fmt.Errorf("rust target: unexpected name %q", name)
		}
		return NewRust(rangeExpr)
	}
	return nil, fmt.Errorf("unknown target kind %q: must be one of crate, rust", kind)
}

// encodeTarget fails for a nil target, which has no wire form.
func encodeTarget(t Target) (targetJSON, error) {
	switch t := t.(type) {
	case Crate:
		return targetJSON{Kind: KindCrate, Name: t.Name, Range: t.Range.String()}, nil
	case Rust:
		return targetJSON{Kind: KindRust, Range: t.Range.String()}, nil
	}
	return targetJSON{}, fmt.Errorf("unsupported target %T", t)
}

// MarshalJSON implements json.Marshaler. A record missing either side
// is an error, so everything it writes can be decoded again.
func (r IncompatRecord) MarshalJSON() ([]byte, error) {
	target, err := encodeTarget(r.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	conflicting, err := encodeTarget(r.Conflicting)
	if err != nil {
		return nil, fmt.Errorf("conflicts: %w", err)
	}

	out := recordJSON{
		Target:    target,
		Conflicts: conflicting,
		Reason:    r.Reason,
	}
	for _, ref := range r.References {
		out.References = append(out.References, refJSON{Kind: ref.Kind.Key(), URL: ref.Locator})
	}
	return marshalNoEscape(out)
}

// marshalNoEscape marshals v without HTML escaping so range operators
// like "<" stay readable in files and hashes.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON implements json.Unmarshaler. Range expressions are parsed,
// so a record decoded without error is fully usable.
func (r *IncompatRecord) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	target, err := NewTarget(in.Target.Kind, in.Target.Name, in.Target.Range)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	conflicting, err := NewTarget(in.Conflicts.Kind, in.Conflicts.Name, in.Conflicts.Range)
	if err != nil {
		return fmt.Errorf("conflicts: %w", err)
	}

	var refs []RefType
	for i, ref := range in.References {
		kind, err := ParseRefKind(ref.Kind)
		if err != nil {
			return fmt.Errorf("references[%d]: %w", i, err)
		}
		refs = append(refs, RefType{Kind: kind, Locator: ref.URL})
	}

	*r = IncompatRecord{
		Target:      target,
		Conflicting: conflicting,
		Reason:      in.Reason,
		References:  refs,
	}
	return nil
}
