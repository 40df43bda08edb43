package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a scenario result as the text stored in golden files:
// a header per query, its match count, then every matching record in the
// standard rendered form under its CUE label.
//
//	# scenario_name
//
//	## query name
//	affects failure_derive 1.0.3: 2 match(es)
//
//	[failure_derive_quote]
//	crate(failure_derive <1.0.7) with crate(quote >=1.0.3)
//	...
func Snapshot(scenarioName string, result *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", scenarioName)

	for _, o := range result.Outcomes {
		fmt.Fprintf(&buf, "\n## %s\n", o.Name)
		fmt.Fprintf(&buf, "%s: %d match(es)\n", o.Query, len(o.Records))
		for i, rec := range o.Records {
			fmt.Fprintf(&buf, "\n[%s]\n", o.Labels[i])
			rec.WriteTo(&buf) // bytes.Buffer writes never fail
		}
	}

	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result's snapshot against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(scenarioName, result))
}
