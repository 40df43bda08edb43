package harness

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/incompat/internal/compiler"
	"github.com/roach88/incompat/internal/ir"
	"github.com/roach88/incompat/internal/logger"
	"github.com/roach88/incompat/internal/registry"
	"github.com/roach88/incompat/internal/store"
	"github.com/roach88/incompat/internal/testutil"
)

// Harness holds the per-scenario execution state.
type Harness struct {
	registry *registry.Registry
	labels   map[string]string // record id -> CUE label
	logger   *logger.Logger
}

// Run executes a scenario with logging discarded.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, logger.Nop())
}

// RunContext executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database so the queries see
// exactly what an import would persist.
//
// Execution flow:
//  1. Compile and validate the scenario's CUE definitions
//  2. Import them into an in-memory store with sequential import ids
//  3. Read them back and build a registry
//  4. Evaluate each query and check its expectations
func RunContext(ctx context.Context, scenario *Scenario, log *logger.Logger) (*Result, error) {
	log = log.Component("harness").WithFields(map[string]any{"scenario": scenario.Name})

	compiled, err := compileSpecs(scenario.Specs)
	if err != nil {
		return nil, err
	}
	if errs := compiler.ValidateSet(compiler.Records(compiled), compiler.Labels(compiled)); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid records: %s", strings.Join(msgs, "; "))
	}

	st, err := store.Open(":memory:", store.WithImportIDs(testutil.NewSequentialImportIDs(scenario.Name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	summary, err := st.WriteRecords(ctx, scenario.Name, compiler.Records(compiled))
	if err != nil {
		return nil, fmt.Errorf("failed to import records: %w", err)
	}
	records, err := st.ReadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	log.Debug().
		Int("inserted", summary.Inserted).
		Int("skipped", summary.Skipped).
		Msg("records imported")

	h := &Harness{
		registry: registry.New(records),
		labels:   labelIndex(compiled),
		logger:   log,
	}

	result := NewResult()
	result.RecordCount = h.registry.Len()
	for _, q := range scenario.Queries {
		outcome, err := h.evaluate(q)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", q.Name, err)
		}
		result.Outcomes = append(result.Outcomes, outcome)
		for _, msg := range CheckExpect(q, outcome) {
			result.AddError(msg)
		}
	}

	return result, nil
}

// compileSpecs compiles each spec file in order.
func compileSpecs(paths []string) ([]compiler.LabeledRecord, error) {
	var all []compiler.LabeledRecord
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec: %w", err)
		}
		records, errs := compiler.CompileSource(data, path)
		if len(errs) > 0 {
			return nil, fmt.Errorf("failed to compile %s: %w", path, errs[0])
		}
		all = append(all, records...)
	}
	return all, nil
}

// labelIndex maps record ids to the first label declaring them.
func labelIndex(records []compiler.LabeledRecord) map[string]string {
	idx := make(map[string]string, len(records))
	for _, r := range records {
		id, err := ir.RecordID(r.Record)
		if err != nil {
			continue
		}
		if _, ok := idx[id]; !ok {
			idx[id] = r.Label
		}
	}
	return idx
}

// evaluate runs one query against the registry.
func (h *Harness) evaluate(q Query) (QueryOutcome, error) {
	pred, text, err := BuildPredicate(q)
	if err != nil {
		return QueryOutcome{}, err
	}

	matches := h.registry.Filter(pred)
	labels := make([]string, len(matches))
	for i, rec := range matches {
		labels[i] = h.labels[ir.MustRecordID(rec)]
	}

	h.logger.Debug().
		Str("query", text).
		Int("matches", len(matches)).
		Msg("query evaluated")

	return QueryOutcome{
		Name:    q.Name,
		Op:      q.Op,
		Query:   text,
		Labels:  labels,
		Records: matches,
	}, nil
}

// BuildPredicate turns a query into a registry predicate and its display text.
func BuildPredicate(q Query) (registry.Predicate, string, error) {
	var version *semver.Version
	if q.Version != "" {
		v, err := ir.ParseVersion(q.Version)
		if err != nil {
			return nil, "", err
		}
		version = v
	}

	text := strings.Join(strings.Fields(q.Op+" "+q.Crate+" "+q.Version), " ")

	switch q.Op {
	case OpAffectsCrate:
		return registry.AffectsCrate(q.Crate), text, nil
	case OpAffects:
		return registry.Affects(q.Crate, version), text, nil
	case OpHasConflicts:
		return registry.HasConflicts(q.Crate), text, nil
	case OpConflicts:
		return registry.Conflicts(q.Crate, version), text, nil
	case OpHasRustConflicts:
		return registry.HasRustConflicts(), text, nil
	case OpRustConflicts:
		return registry.RustConflicts(version), text, nil
	}
	return nil, "", fmt.Errorf("unknown op %q", q.Op)
}
