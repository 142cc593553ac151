// =============================================================================
// Bill Validator - Row Classifier
// =============================================================================
//
// Two questions are asked about every bill row before the coordination
// arithmetic runs:
//
//   1. Is it a coordination-charge row?  (CoordinationMatcher)
//   2. Is it excluded from the base amount?  (IsExcluded)
//
// Exactly one coordination convention is active per run; it comes from
// configuration (column + match mode + marker). Exclusions are always
// conjunctive conditions loaded from the exclusion table.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/reference"
	"github.com/ginjaninja78/bill-validator/internal/types"
)

// =============================================================================
// COORDINATION ROWS
// =============================================================================

// CoordinationMatcher identifies coordination-charge rows.
type CoordinationMatcher struct {
	Column string
	Mode   config.MatchMode
	Marker string
}

// NewCoordinationMatcher builds the matcher from configuration.
func NewCoordinationMatcher(c config.Coordination) CoordinationMatcher {
	return CoordinationMatcher{
		Column: c.Column,
		Mode:   c.Match,
		Marker: strings.TrimSpace(c.Marker),
	}
}

// Matches reports whether row is a coordination-charge row.
func (m CoordinationMatcher) Matches(table *types.Table, row types.Row) bool {
	cell := table.Trimmed(row, m.Column)
	if cell == "" {
		return false
	}

	switch m.Mode {
	case config.MatchEquals:
		return cell == m.Marker
	default:
		return strings.Contains(strings.ToLower(cell), strings.ToLower(m.Marker))
	}
}

// String describes the convention, e.g. `Work code equals "C"`.
func (m CoordinationMatcher) String() string {
	return fmt.Sprintf("%s %s %q", m.Column, m.Mode, m.Marker)
}

// =============================================================================
// EXCLUSIONS
// =============================================================================

// IsExcluded reports whether row satisfies every condition of at least one
// rule.
func IsExcluded(table *types.Table, row types.Row, rules []reference.ExclusionRule) bool {
	_, ok := MatchingRule(table, row, rules)
	return ok
}

// MatchingRule returns the first rule row satisfies.
func MatchingRule(table *types.Table, row types.Row, rules []reference.ExclusionRule) (reference.ExclusionRule, bool) {
	for _, rule := range rules {
		if ruleMatches(table, row, rule) {
			return rule, true
		}
	}
	return reference.ExclusionRule{}, false
}

func ruleMatches(table *types.Table, row types.Row, rule reference.ExclusionRule) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	for _, c := range rule.Conditions {
		cell, ok := table.Value(row, c.Column)
		if !ok || !conditionMatches(cell, c.Value) {
			return false
		}
	}
	return true
}

// conditionMatches compares numerically within numericEpsilon when both
// sides are numbers, and as trimmed strings otherwise. An empty cell never
// matches.
func conditionMatches(cell, want string) bool {
	cell = strings.TrimSpace(cell)
	want = strings.TrimSpace(want)
	if cell == "" {
		return false
	}

	a, aok := ParseNumber(cell)
	b, bok := ParseNumber(want)
	if aok && bok {
		return a.Sub(b).Abs().LessThanOrEqual(numericEpsilon)
	}

	return cell == want
}
