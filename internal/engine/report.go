package engine

import (
	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/reference"
	"github.com/ginjaninja78/bill-validator/internal/validation"
)

// Report is the complete, self-contained outcome of one validation run.
// It carries no timestamps or random identifiers, so identical inputs
// produce identical reports.
type Report struct {
	Source string `json:"source" yaml:"source"`

	// GlobalColumnsOK is false when required columns, or the invoice,
	// coordination or work columns the engine reads, are missing from the
	// bill header. Results is empty in that case.
	GlobalColumnsOK bool     `json:"global_columns_ok" yaml:"global_columns_ok"`
	MissingColumns  []string `json:"missing_columns" yaml:"missing_columns"`
	RequiredColumns []string `json:"required_columns" yaml:"required_columns"`

	Exclusions []reference.ExclusionRule      `json:"exclusions" yaml:"exclusions"`
	Allowed    *reference.AllowedValues       `json:"allowed_values" yaml:"allowed_values"`
	WorkCodes  *reference.WorkCodeDiagnostics `json:"work_code_diagnostics,omitempty" yaml:"work_code_diagnostics,omitempty"`
	Warnings   []string                       `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	Percentage         float64             `json:"percentage" yaml:"percentage"`
	Tolerance          float64             `json:"tolerance" yaml:"tolerance"`
	AbsentCoordination config.AbsentPolicy `json:"absent_coordination" yaml:"absent_coordination"`
	CoordinationRule   string              `json:"coordination_rule" yaml:"coordination_rule"`

	// Invoices lists invoice ids in first-seen order.
	Invoices   []string                          `json:"invoices" yaml:"invoices"`
	Results    map[string]*validation.BillResult `json:"results" yaml:"results"`
	TotalBills int                               `json:"total_bills" yaml:"total_bills"`

	// Stages lists the engine stages the run passed through.
	Stages []Stage `json:"stages" yaml:"stages"`
}

func newReport(cfg *config.Config, bundle *reference.Bundle, required []string, matcher validation.CoordinationMatcher) *Report {
	r := &Report{
		Source:             cfg.Files.Bill,
		MissingColumns:     []string{},
		RequiredColumns:    required,
		Exclusions:         bundle.Exclusions,
		Allowed:            bundle.Allowed,
		Warnings:           bundle.Warnings,
		Percentage:         cfg.Coordination.Percentage,
		Tolerance:          cfg.Coordination.Tolerance,
		AbsentCoordination: cfg.Coordination.AbsentPolicy,
		CoordinationRule:   matcher.String(),
		Invoices:           []string{},
		Results:            make(map[string]*validation.BillResult),
	}
	if r.Exclusions == nil {
		r.Exclusions = []reference.ExclusionRule{}
	}
	if bundle.WorkCodes != nil {
		diag := bundle.WorkCodes.Diagnostics
		r.WorkCodes = &diag
	}
	return r
}

// Result returns the bill result of one invoice.
func (r *Report) Result(invoiceID string) (*validation.BillResult, bool) {
	res, ok := r.Results[invoiceID]
	return res, ok
}

// Passed lists the invoices whose every check passed, in first-seen order.
func (r *Report) Passed() []string {
	return r.filter(true)
}

// Failed lists the invoices with at least one failed check, in first-seen
// order.
func (r *Report) Failed() []string {
	return r.filter(false)
}

func (r *Report) filter(passed bool) []string {
	ids := []string{}
	for _, id := range r.Invoices {
		if r.Results[id].Passed() == passed {
			ids = append(ids, id)
		}
	}
	return ids
}

// OK reports whether the run found no problem at all: columns present and
// every bill passed.
func (r *Report) OK() bool {
	return r.GlobalColumnsOK && len(r.Failed()) == 0
}
