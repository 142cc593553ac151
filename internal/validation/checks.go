// =============================================================================
// Bill Validator - Per-Bill Check Suite
// =============================================================================
//
// The suite runs the fixed pipeline of checks on one invoice group:
//
//   1. columns_present      - global header check, copied into every bill
//   2. no_missing_values    - required cells are non-empty (unless "blank")
//   3. coordination_correct - coordination charge = base x percentage
//   4. allowed_values       - cells belong to the column's allowed set
//   5. numeric_values       - numeric columns hold numbers
//   6. work_pairs_valid     - work code / work name present and registered
//
// FINDINGS, NOT ERRORS:
//   Nothing in this file returns an error. Every anomaly becomes part of the
//   bill's Details with the rows or values needed to explain it.
//
// =============================================================================

package validation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/reference"
	"github.com/ginjaninja78/bill-validator/internal/types"
)

// =============================================================================
// SUITE
// =============================================================================

// Suite holds everything the checks read. It is built once per run and
// shared, read-only, by every invoice.
type Suite struct {
	bundle       *reference.Bundle
	columns      config.Columns
	required     []string
	numeric      []string
	coordination CoordinationMatcher
	percentage   decimal.Decimal
	tolerance    decimal.Decimal
	absentPolicy config.AbsentPolicy
}

// NewSuite builds the check suite for one run.
//
// PARAMETERS:
//   - cfg: The run configuration (columns, numeric columns, coordination).
//   - bundle: The loaded references.
//   - required: The required columns (see reference.RequiredColumns).
func NewSuite(cfg *config.Config, bundle *reference.Bundle, required []string) *Suite {
	return &Suite{
		bundle:       bundle,
		columns:      cfg.Columns,
		required:     required,
		numeric:      cfg.NumericColumns,
		coordination: NewCoordinationMatcher(cfg.Coordination),
		percentage:   decimal.NewFromFloat(cfg.Coordination.Percentage),
		tolerance:    decimal.NewFromFloat(cfg.Coordination.Tolerance),
		absentPolicy: cfg.Coordination.AbsentPolicy,
	}
}

// Coordination returns the active coordination convention.
func (s *Suite) Coordination() CoordinationMatcher {
	return s.coordination
}

// Run applies every check to one invoice group.
//
// PARAMETERS:
//   - table: The bill table.
//   - group: The invoice and the indexes of its rows in table.Rows.
//   - columnsOK: Outcome of the global column-presence check.
//
// RETURNS:
//   - The bill result. Its Passed() is the AND of all produced checks.
func (s *Suite) Run(table *types.Table, group Group, columnsOK bool) *BillResult {
	rows := make([]types.Row, len(group.Rows))
	for i, idx := range group.Rows {
		rows[i] = table.Rows[idx]
	}

	result := &BillResult{
		InvoiceID: group.InvoiceID,
		RowCount:  len(rows),
		Checks:    make(map[CheckName]bool, len(CheckOrder)),
	}

	result.Checks[ColumnsPresent] = columnsOK

	missing := s.missingValues(table, rows)
	result.Checks[NoMissingValues] = len(missing) == 0
	result.Details.MissingValues = missing

	coordination, coordinationOK := s.coordinationCheck(table, rows)
	result.Checks[CoordinationCorrect] = coordinationOK
	result.Details.Coordination = coordination

	allowed := s.allowedValues(table, rows)
	result.Checks[AllowedValues] = len(allowed) == 0
	result.Details.AllowedViolations = allowed

	numeric := s.numericValues(table, rows)
	result.Checks[NumericValues] = len(numeric) == 0
	result.Details.NumericViolations = numeric

	if s.workPairsApplicable(table) {
		pairs := s.workPairs(table, rows)
		result.Checks[WorkPairsValid] = len(pairs.MissingCode) == 0 &&
			len(pairs.MissingName) == 0 && len(pairs.InvalidPairs) == 0
		result.Details.WorkPairs = pairs
	}

	return result
}

// =============================================================================
// CHECK 2: NO MISSING VALUES
// =============================================================================

// missingValues lists, per required column, the rows with an empty cell.
// Columns whose allowed set carries the "blank" token are skipped.
func (s *Suite) missingValues(table *types.Table, rows []types.Row) map[string][]int {
	missing := make(map[string][]int)

	for _, column := range s.required {
		if !table.HasColumn(column) {
			continue
		}
		if rule, ok := s.bundle.Allowed.Rule(column); ok && rule.EmptyPermitted {
			continue
		}
		for _, row := range rows {
			if table.Trimmed(row, column) == "" {
				missing[column] = append(missing[column], row.Number)
			}
		}
	}

	return missing
}

// =============================================================================
// CHECK 3: COORDINATION CHARGE
// =============================================================================

// coordinationCheck partitions the rows into coordination rows, excluded
// rows and base rows, and compares the actual charge with the expected one.
//
// CALCULATION:
//   base     = sum(cost) over rows that are neither coordination nor excluded
//   expected = base x percentage / 100
//   actual   = sum(cost) over coordination rows
//   pass     = |expected - actual| <= tolerance
//
// An invoice without coordination rows passes or fails per the configured
// absent policy.
func (s *Suite) coordinationCheck(table *types.Table, rows []types.Row) (CoordinationDetail, bool) {
	detail := CoordinationDetail{
		CoordinationRows: []int{},
		ExcludedItems:    []ExcludedItem{},
	}

	base := decimal.Zero
	total := decimal.Zero
	actual := decimal.Zero

	for _, row := range rows {
		cost := amount(table.Trimmed(row, s.columns.Cost))
		total = total.Add(cost)

		if s.coordination.Matches(table, row) {
			actual = actual.Add(cost)
			detail.CoordinationRows = append(detail.CoordinationRows, row.Number)
			continue
		}

		if rule, excluded := MatchingRule(table, row, s.bundle.Exclusions); excluded {
			detail.ExcludedItems = append(detail.ExcludedItems, ExcludedItem{
				Row:      row.Number,
				Item:     table.Trimmed(row, s.columns.Item),
				WorkCode: table.Trimmed(row, s.columns.WorkCode),
				Cost:     cost,
				Rule:     rule.String(),
			})
			continue
		}

		base = base.Add(cost)
	}

	expected := base.Mul(s.percentage).Div(hundred)
	diff := expected.Sub(actual).Abs()

	detail.HasCoordination = len(detail.CoordinationRows) > 0
	detail.BaseAmount = base
	detail.TotalAmount = total
	detail.Expected = expected
	detail.Actual = actual
	detail.Difference = diff

	if !detail.HasCoordination {
		return detail, s.absentPolicy == config.AbsentPass
	}

	return detail, diff.LessThanOrEqual(s.tolerance)
}

// =============================================================================
// CHECK 4: ALLOWED VALUES
// =============================================================================

// allowedValues lists, per restricted column, the distinct non-empty values
// outside the allowed set, sorted. Empty cells are the missing-value
// check's concern.
func (s *Suite) allowedValues(table *types.Table, rows []types.Row) map[string][]string {
	violations := make(map[string][]string)
	if s.bundle.Allowed == nil {
		return violations
	}

	for _, column := range s.bundle.Allowed.Columns {
		rule := s.bundle.Allowed.Rules[column]
		if rule.Restriction == reference.Unrestricted || !table.HasColumn(column) {
			continue
		}

		seen := make(map[string]struct{})
		for _, row := range rows {
			value := table.Trimmed(row, column)
			if value == "" || rule.Allows(value) {
				continue
			}
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			violations[column] = append(violations[column], value)
		}
		if v, ok := violations[column]; ok {
			sort.Strings(v)
		}
	}

	return violations
}

// =============================================================================
// CHECK 5: NUMERIC VALUES
// =============================================================================

// numericValues lists, per numeric column present in the table, the rows
// whose non-empty cell does not parse as a number.
func (s *Suite) numericValues(table *types.Table, rows []types.Row) map[string][]int {
	violations := make(map[string][]int)

	for _, column := range s.numeric {
		if !table.HasColumn(column) {
			continue
		}
		for _, row := range rows {
			value := table.Trimmed(row, column)
			if value == "" {
				continue
			}
			if _, ok := ParseNumber(value); !ok {
				violations[column] = append(violations[column], row.Number)
			}
		}
	}

	return violations
}

// =============================================================================
// CHECK 6: WORK PAIRS
// =============================================================================

// workPairsApplicable reports whether the work pair check is produced: a
// reference was loaded, or the bill carries both work columns.
func (s *Suite) workPairsApplicable(table *types.Table) bool {
	if s.bundle.WorkCodes != nil {
		return true
	}
	return table.HasColumn(s.columns.WorkCode) && table.HasColumn(s.columns.Work)
}

// workPairs checks that every row has a work code and a work name and,
// when a reference is loaded, that the pair is registered.
func (s *Suite) workPairs(table *types.Table, rows []types.Row) *WorkPairDetail {
	detail := &WorkPairDetail{
		ReferenceLoaded: s.bundle.WorkCodes != nil,
		MissingCode:     []int{},
		MissingName:     []int{},
		InvalidPairs:    []InvalidPair{},
	}

	invalid := make(map[reference.WorkPair]int)

	for _, row := range rows {
		code := table.Trimmed(row, s.columns.WorkCode)
		name := table.Trimmed(row, s.columns.Work)

		if code == "" {
			detail.MissingCode = append(detail.MissingCode, row.Number)
		}
		if name == "" {
			detail.MissingName = append(detail.MissingName, row.Number)
		}
		if code == "" || name == "" || !detail.ReferenceLoaded {
			continue
		}
		if s.bundle.WorkCodes.Contains(code, name) {
			continue
		}

		pair := reference.WorkPair{Code: code, Name: name}
		if i, ok := invalid[pair]; ok {
			detail.InvalidPairs[i].Rows = append(detail.InvalidPairs[i].Rows, row.Number)
			continue
		}
		invalid[pair] = len(detail.InvalidPairs)
		detail.InvalidPairs = append(detail.InvalidPairs, InvalidPair{
			Code: code,
			Name: name,
			Rows: []int{row.Number},
		})
	}

	return detail
}
