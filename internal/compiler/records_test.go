package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/incompat/internal/testutil"
)

const twoRecords = `
incompat: failure_derive_quote: {
	target:    {kind: "crate", name: "failure_derive", range: "<1.0.7"}
	conflicts: {kind: "crate", name: "quote", range: ">=1.0.3"}
}
incompat: serde_bare: {
	target:    {kind: "crate", name: "serde_derive", range: "<1.0.20"}
	conflicts: {kind: "crate", name: "syn", range: ">=2"}
}
`

func TestCompileSourceOrder(t *testing.T) {
	recs, errs := CompileSource([]byte(twoRecords), "two.cue")
	require.Empty(t, errs)
	require.Len(t, recs, 2)

	assert.Equal(t, []string{"failure_derive_quote", "serde_bare"}, Labels(recs))
	assert.Equal(t, testutil.SerdeBare().String(), Records(recs)[1].String())
	assert.Equal(t, "two.cue", recs[0].Pos.Filename())
}

func TestCompileSourceNoRoot(t *testing.T) {
	recs, errs := CompileSource([]byte(`other: 1`), "other.cue")
	assert.Empty(t, errs)
	assert.Empty(t, recs)
}

func TestCompileSourceSyntaxError(t *testing.T) {
	_, errs := CompileSource([]byte(`incompat: {`), "broken.cue")
	require.Len(t, errs, 1)
}

const oneBadOneGood = `
incompat: bad: {
	target:    {kind: "crate", name: "a", range: "not a range"}
	conflicts: {kind: "rust", range: ">=1.40"}
}
incompat: good: {
	target:    {kind: "crate", name: "b", range: "<1"}
	conflicts: {kind: "rust", range: ">=1.40"}
}
`

func TestCompileRecordsCollectAll(t *testing.T) {
	recs, errs := CompileSource([]byte(oneBadOneGood), "mixed.cue")
	require.Len(t, errs, 1)
	require.Len(t, recs, 1)
	assert.Equal(t, "good", recs[0].Label)

	var ce *CompileError
	require.True(t, errors.As(errs[0], &ce))
	assert.Equal(t, "target.range", ce.Field)
	assert.Contains(t, errs[0].Error(), "incompat.bad")
}
