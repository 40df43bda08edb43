package harness

import (
	"fmt"
	"slices"
)

// CheckExpect compares a query outcome against its expectations and
// returns one message per failed expectation.
func CheckExpect(q Query, outcome QueryOutcome) []string {
	var errs []string
	got := len(outcome.Labels)

	if q.Expect.Match != nil && *q.Expect.Match != (got > 0) {
		errs = append(errs, fmt.Sprintf("%s: expected match=%t, got %d match(es)", q.Name, *q.Expect.Match, got))
	}

	if q.Expect.Count != nil && *q.Expect.Count != got {
		errs = append(errs, fmt.Sprintf("%s: expected %d match(es), got %d", q.Name, *q.Expect.Count, got))
	}

	// An explicit empty list means "no matches"
	if q.Expect.Labels != nil && !slices.Equal(q.Expect.Labels, outcome.Labels) {
		errs = append(errs, fmt.Sprintf("%s: expected labels %v, got %v", q.Name, q.Expect.Labels, outcome.Labels))
	}

	return errs
}
