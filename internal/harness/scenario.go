package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/incompat/internal/ir"
)

// Scenario defines a query scenario: a set of record definitions and the
// queries expected to hold against them.
type Scenario struct {
	// Name uniquely identifies this scenario (also the golden file name).
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Specs lists CUE definition files to compile and load.
	// Relative paths are resolved against the base path given to
	// LoadScenarioWithBasePath, else against the scenario file's directory.
	Specs []string `yaml:"specs"`

	// Queries run in order against the loaded registry.
	Queries []Query `yaml:"queries"`
}

// Query is one predicate evaluated over every loaded record.
type Query struct {
	// Name labels the query in results and golden files.
	Name string `yaml:"name"`

	// Op selects the predicate; see the Op* constants.
	Op string `yaml:"op"`

	// Crate is the crate name for crate predicates.
	Crate string `yaml:"crate,omitempty"`

	// Version is the version for range predicates.
	Version string `yaml:"version,omitempty"`

	// Expect describes the expected matches.
	Expect Expect `yaml:"expect"`
}

// Expect holds the expectations for a query. At least one field is set.
type Expect struct {
	// Match is whether any record matches.
	Match *bool `yaml:"match,omitempty"`

	// Count is the exact number of matching records.
	Count *int `yaml:"count,omitempty"`

	// Labels are the CUE labels of the matching records, in order.
	Labels []string `yaml:"labels,omitempty"`
}

// Query operations, one per record predicate.
const (
	OpAffectsCrate     = "affects_crate"
	OpAffects          = "affects"
	OpHasConflicts     = "has_conflicts"
	OpConflicts        = "conflicts"
	OpHasRustConflicts = "has_rust_conflicts"
	OpRustConflicts    = "rust_conflicts"
)

// opShape records which arguments an operation takes.
var opShape = map[string]struct{ crate, version bool }{
	OpAffectsCrate:     {crate: true},
	OpAffects:          {crate: true, version: true},
	OpHasConflicts:     {crate: true},
	OpConflicts:        {crate: true, version: true},
	OpHasRustConflicts: {},
	OpRustConflicts:    {version: true},
}

// LoadScenario reads and parses a scenario YAML file.
// Relative spec paths resolve against the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "query:" vs "queries:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve spec paths relative to base path BEFORE validation
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i := range s.Queries {
		if err := validateQuery(i, &s.Queries[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateQuery validates a single query based on its op.
func validateQuery(index int, q *Query) error {
	if q.Name == "" {
		return fmt.Errorf("queries[%d]: name is required", index)
	}

	shape, ok := opShape[q.Op]
	if !ok {
		return fmt.Errorf("queries[%d]: unknown op %q", index, q.Op)
	}

	switch {
	case shape.crate && q.Crate == "":
		return fmt.Errorf("queries[%d]: crate is required for %s", index, q.Op)
	case !shape.crate && q.Crate != "":
		return fmt.Errorf("queries[%d]: crate is not allowed for %s", index, q.Op)
	case shape.version && q.Version == "":
		return fmt.Errorf("queries[%d]: version is required for %s", index, q.Op)
	case !shape.version && q.Version != "":
		return fmt.Errorf("queries[%d]: version is not allowed for %s", index, q.Op)
	}

	if q.Version != "" {
		if _, err := ir.ParseVersion(q.Version); err != nil {
			return fmt.Errorf("queries[%d]: %w", index, err)
		}
	}

	if q.Expect.Match == nil && q.Expect.Count == nil && q.Expect.Labels == nil {
		return fmt.Errorf("queries[%d]: expect needs match, count, or labels", index)
	}
	if q.Expect.Count != nil && *q.Expect.Count < 0 {
		return fmt.Errorf("queries[%d]: count must be non-negative", index)
	}

	return nil
}
