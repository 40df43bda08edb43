package harness

import "github.com/roach88/incompat/internal/ir"

// QueryOutcome is the evaluated form of one scenario query.
type QueryOutcome struct {
	Name    string              `json:"name"`
	Op      string              `json:"op"`
	Query   string              `json:"query"`  // e.g. "affects failure_derive 1.0.3"
	Labels  []string            `json:"labels"` // labels of matching records, in order
	Records []ir.IncompatRecord `json:"-"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expectation held.
	Pass bool `json:"pass"`

	// Outcomes holds one entry per query, in scenario order.
	Outcomes []QueryOutcome `json:"outcomes"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RecordCount is the number of distinct records loaded.
	RecordCount int `json:"record_count"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []QueryOutcome{},
		Errors:   []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
