package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/roach88/incompat/internal/ir"
	"github.com/roach88/incompat/internal/testutil"
)

func newFixtureRegistry() *Registry {
	return New(testutil.Records())
}

func TestFilterAffects(t *testing.T) {
	reg := newFixtureRegistry()

	hits := reg.Filter(Affects("failure_derive", ir.MustParseVersion("1.0.3")))
	require.Len(t, hits, 2)
	assert.True(t, hits[0].HasConflicts("quote"), "input order is kept")
	assert.True(t, hits[1].HasRustConflicts())

	assert.Empty(t, reg.Filter(Affects("failure_derive", ir.MustParseVersion("1.0.7"))))
}

func TestFilterReturnsEmptySlice(t *testing.T) {
	hits := newFixtureRegistry().Filter(AffectsCrate("nope"))
	assert.NotNil(t, hits)
	assert.Len(t, hits, 0)
}

func TestFilterConflicts(t *testing.T) {
	reg := newFixtureRegistry()

	assert.Len(t, reg.Filter(HasConflicts("quote")), 1)
	assert.Len(t, reg.Filter(Conflicts("quote", ir.MustParseVersion("1.0.3"))), 1)
	assert.Empty(t, reg.Filter(Conflicts("quote", ir.MustParseVersion("1.0.2"))))
	assert.Len(t, reg.Filter(Conflicts("syn", ir.MustParseVersion("2.0.1"))), 1)
}

func TestFilterRust(t *testing.T) {
	reg := newFixtureRegistry()

	assert.Len(t, reg.Filter(HasRustConflicts()), 1)
	assert.Len(t, reg.Filter(RustConflicts(ir.MustParseVersion("1.30.0"))), 1)
	assert.Empty(t, reg.Filter(RustConflicts(ir.MustParseVersion("1.31.0"))))
}

func TestFirst(t *testing.T) {
	reg := newFixtureRegistry()

	rec, ok := reg.First(AffectsCrate("failure_derive"))
	require.True(t, ok)
	assert.True(t, rec.HasConflicts("quote"))

	rec, ok = reg.First(And(AffectsCrate("failure_derive"), HasRustConflicts()))
	require.True(t, ok)
	assert.Equal(t, testutil.FailureBadRust().String(), rec.String())

	_, ok = reg.First(AffectsCrate("tokio"))
	assert.False(t, ok)
}

func TestAndEmptyMatchesAll(t *testing.T) {
	reg := newFixtureRegistry()
	assert.Equal(t, reg.Len(), reg.Count(And()))
}

func TestNewCopiesInput(t *testing.T) {
	recs := testutil.Records()
	reg := New(recs)

	recs[0] = testutil.SerdeBare()

	first, ok := reg.First(And())
	require.True(t, ok)
	assert.True(t, first.HasConflicts("quote"))
}

func TestRecordsReturnsCopy(t *testing.T) {
	reg := newFixtureRegistry()
	out := reg.Records()
	out[0] = testutil.SerdeBare()

	assert.True(t, reg.Records()[0].HasConflicts("quote"))
}

func TestAllStopsEarly(t *testing.T) {
	reg := newFixtureRegistry()

	var seen []int
	for i := range reg.All() {
		seen = append(seen, i)
		if i == 1 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, seen)
}

func TestConcurrentReads(t *testing.T) {
	reg := newFixtureRegistry()
	v := ir.MustParseVersion("1.0.3")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Len(t, reg.Filter(Affects("failure_derive", v)), 2)
			}
		}()
	}
	wg.Wait()
}

// TestFilterIsStableSubsequence checks that Filter keeps input order and
// agrees with the record-level predicate, for arbitrary selections.
func TestFilterIsStableSubsequence(t *testing.T) {
	pool := testutil.Records()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "n")
		recs := make([]ir.IncompatRecord, n)
		for i := range recs {
			recs[i] = pool[rapid.IntRange(0, len(pool)-1).Draw(t, "pick")]
			recs[i].Reason = string(rune('a' + i))
		}
		name := rapid.SampledFrom([]string{"failure_derive", "serde_derive", "quote"}).Draw(t, "name")

		hits := New(recs).Filter(AffectsCrate(name))

		var want []string
		for _, rec := range recs {
			if rec.AffectsCrate(name) {
				want = append(want, rec.Reason)
			}
		}
		var got []string
		for _, rec := range hits {
			got = append(got, rec.Reason)
		}
		if len(got) != len(want) {
			t.Fatalf("got %d hits, want %d", len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("hit %d = %q, want %q", i, got[i], want[i])
			}
		}
	})
}
