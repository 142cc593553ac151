package validation

import "github.com/shopspring/decimal"

// CheckName identifies one per-bill check.
type CheckName string

const (
	ColumnsPresent      CheckName = "columns_present"
	NoMissingValues     CheckName = "no_missing_values"
	CoordinationCorrect CheckName = "coordination_correct"
	AllowedValues       CheckName = "allowed_values"
	NumericValues       CheckName = "numeric_values"
	WorkPairsValid      CheckName = "work_pairs_valid"
)

// CheckOrder is the fixed order checks run and are rendered in.
var CheckOrder = []CheckName{
	ColumnsPresent,
	NoMissingValues,
	CoordinationCorrect,
	AllowedValues,
	NumericValues,
	WorkPairsValid,
}

// Group is the set of bill rows sharing one invoice id.
type Group struct {
	InvoiceID string
	Rows      []int // indexes into the bill table's Rows
}

// BillResult is the outcome of the check suite for one invoice.
type BillResult struct {
	InvoiceID string             `json:"invoice_id" yaml:"invoice_id"`
	RowCount  int                `json:"row_count" yaml:"row_count"`
	Checks    map[CheckName]bool `json:"checks" yaml:"checks"`
	Details   Details            `json:"details" yaml:"details"`
}

// Passed is the logical AND of every produced check.
func (r *BillResult) Passed() bool {
	for _, ok := range r.Checks {
		if !ok {
			return false
		}
	}
	return true
}

// CheckNames lists the produced checks in CheckOrder.
func (r *BillResult) CheckNames() []CheckName {
	names := make([]CheckName, 0, len(r.Checks))
	for _, name := range CheckOrder {
		if _, ok := r.Checks[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Details carries the evidence behind every check outcome.
type Details struct {
	// MissingValues maps column to the display rows with an empty cell.
	MissingValues map[string][]int `json:"missing_values" yaml:"missing_values"`

	Coordination CoordinationDetail `json:"coordination" yaml:"coordination"`

	// AllowedViolations maps column to the sorted distinct offending values.
	AllowedViolations map[string][]string `json:"allowed_violations" yaml:"allowed_violations"`

	// NumericViolations maps column to the display rows of non-numeric cells.
	NumericViolations map[string][]int `json:"numeric_violations" yaml:"numeric_violations"`

	// WorkPairs is nil when the work pair check was not produced.
	WorkPairs *WorkPairDetail `json:"work_pairs,omitempty" yaml:"work_pairs,omitempty"`
}

// CoordinationDetail explains the coordination arithmetic of one invoice.
type CoordinationDetail struct {
	HasCoordination  bool            `json:"has_coordination" yaml:"has_coordination"`
	CoordinationRows []int           `json:"coordination_rows" yaml:"coordination_rows"`
	BaseAmount       decimal.Decimal `json:"base_amount" yaml:"base_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	Expected         decimal.Decimal `json:"expected" yaml:"expected"`
	Actual           decimal.Decimal `json:"actual" yaml:"actual"`
	Difference       decimal.Decimal `json:"difference" yaml:"difference"`
	ExcludedItems    []ExcludedItem  `json:"excluded_items" yaml:"excluded_items"`
}

// ExcludedItem is a row left out of the base amount by an exclusion rule.
type ExcludedItem struct {
	Row      int             `json:"row" yaml:"row"`
	Item     string          `json:"item" yaml:"item"`
	WorkCode string          `json:"work_code" yaml:"work_code"`
	Cost     decimal.Decimal `json:"cost" yaml:"cost"`
	Rule     string          `json:"rule" yaml:"rule"`
}

// WorkPairDetail lists work code / work name problems of one invoice.
type WorkPairDetail struct {
	ReferenceLoaded bool          `json:"reference_loaded" yaml:"reference_loaded"`
	MissingCode     []int         `json:"missing_code" yaml:"missing_code"`
	MissingName     []int         `json:"missing_name" yaml:"missing_name"`
	InvalidPairs    []InvalidPair `json:"invalid_pairs" yaml:"invalid_pairs"`
}

// InvalidPair is a (code, name) combination absent from the reference,
// with every row it occurs on.
type InvalidPair struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
	Rows []int  `json:"rows" yaml:"rows"`
}
