package reference

import (
	"strings"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/source"
	"github.com/ginjaninja78/bill-validator/internal/types"
)

// Condition is one (column, value) pair of an exclusion rule.
type Condition struct {
	Column string `json:"column" yaml:"column"`
	Value  string `json:"value" yaml:"value"`
}

// ExclusionRule is a conjunction of conditions. A bill row is excluded from
// the base amount when it satisfies every condition of at least one rule.
type ExclusionRule struct {
	// Row is the display row of the rule in the exclusion table.
	Row        int         `json:"row" yaml:"row"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

// String renders the rule as `Item = Supervisor AND Work code = S1`.
func (r ExclusionRule) String() string {
	parts := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		parts[i] = c.Column + " = " + c.Value
	}
	return strings.Join(parts, " AND ")
}

// LoadExclusionRules reads the exclusion table. Every row becomes one rule
// built from its non-empty cells; rows without any non-empty cell are
// dropped. An empty path or a missing file yields no rules and no error,
// since exclusions are optional.
func LoadExclusionRules(path string, settings config.Table) ([]ExclusionRule, error) {
	if !source.Exists(path) {
		return nil, nil
	}

	table, err := source.Read(path, settings)
	if err != nil {
		return nil, &types.ReferenceLoadError{Kind: "exclusions", Path: path, Err: err}
	}

	var rules []ExclusionRule
	for _, row := range table.Rows {
		var conditions []Condition
		for _, column := range table.Headers {
			value := table.Trimmed(row, column)
			if value == "" {
				continue
			}
			conditions = append(conditions, Condition{Column: column, Value: value})
		}
		if len(conditions) == 0 {
			continue
		}
		rules = append(rules, ExclusionRule{Row: row.Number, Conditions: conditions})
	}

	return rules, nil
}
