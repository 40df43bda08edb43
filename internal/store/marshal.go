package store

import (
	"fmt"

	"github.com/roach88/incompat/internal/ir"
)

// targetColumns flattens a target into its (kind, name, range) columns.
func targetColumns(t ir.Target) (kind, name, rng string, err error) {
	switch t := t.(type) {
	case ir.Crate:
		return ir.KindCrate, t.Name, t.Range.String(), nil
	case ir.Rust:
		return ir.KindRust, "", t.Range.String(), nil
	}
	return "", "", "", fmt.Errorf("marshal target: missing target")
}

// scanTarget rebuilds a target from its columns, re-parsing the range.
func scanTarget(kind, name, rng string) (ir.Target, error) {
	t, err := ir.NewTarget(kind, name, rng)
	if err != nil {
		return nil, fmt.Errorf("unmarshal target: %w", err)
	}
	return t, nil
}

// scanReference rebuilds a reference from its columns.
func scanReference(kind, locator string) (ir.RefType, error) {
	k, err := ir.ParseRefKind(kind)
	if err != nil {
		return ir.RefType{}, fmt.Errorf("unmarshal reference: %w", err)
	}
	return ir.RefType{Kind: k, Locator: locator}, nil
}
