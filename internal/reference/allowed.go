package reference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/source"
	"github.com/ginjaninja78/bill-validator/internal/types"
)

// Reserved tokens in the allowed-values table. They are matched
// case-insensitively and never become literal members of a set.
const (
	TokenAny   = "any"
	TokenBlank = "blank"
)

// Restriction says whether a column's non-empty values are limited.
type Restriction int

const (
	// ExplicitSet limits values to the listed literals.
	ExplicitSet Restriction = iota

	// Unrestricted accepts any non-empty value (token "any").
	Unrestricted
)

func (r Restriction) String() string {
	if r == Unrestricted {
		return "unrestricted"
	}
	return "explicit_set"
}

// MarshalText lets the restriction appear by name in JSON and YAML reports.
func (r Restriction) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ColumnRule is the allowed-value rule for one required column.
type ColumnRule struct {
	Column      string      `json:"column" yaml:"column"`
	Restriction Restriction `json:"restriction" yaml:"restriction"`

	// EmptyPermitted is set by the "blank" token and exempts the column
	// from the missing-value check.
	EmptyPermitted bool `json:"empty_permitted" yaml:"empty_permitted"`

	// Values lists the permitted literals, sorted. Empty for unrestricted
	// columns.
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`

	set map[string]struct{}
}

// Allows reports whether a non-empty value satisfies the rule. value is
// compared after trimming.
func (r ColumnRule) Allows(value string) bool {
	if r.Restriction == Unrestricted {
		return true
	}
	_, ok := r.set[strings.TrimSpace(value)]
	return ok
}

// AllowedValues maps each required column to its rule. Columns keeps the
// header order of the reference table.
type AllowedValues struct {
	Source  string                `json:"source" yaml:"source"`
	Columns []string              `json:"columns" yaml:"columns"`
	Rules   map[string]ColumnRule `json:"rules" yaml:"rules"`
}

// Rule returns the rule declared for column.
func (a *AllowedValues) Rule(column string) (ColumnRule, bool) {
	if a == nil {
		return ColumnRule{}, false
	}
	r, ok := a.Rules[column]
	return r, ok
}

// NewColumnRule builds a rule from the raw cells listed under a column
// header. Reserved tokens set the flags; everything else is a literal.
func NewColumnRule(column string, cells []string) ColumnRule {
	rule := ColumnRule{
		Column:      column,
		Restriction: ExplicitSet,
		set:         make(map[string]struct{}),
	}

	for _, cell := range cells {
		value := strings.TrimSpace(cell)
		switch {
		case value == "":
			continue
		case strings.EqualFold(value, TokenAny):
			rule.Restriction = Unrestricted
		case strings.EqualFold(value, TokenBlank):
			rule.EmptyPermitted = true
		default:
			rule.set[value] = struct{}{}
		}
	}

	if rule.Restriction == Unrestricted {
		rule.set = nil
		return rule
	}

	rule.Values = make([]string, 0, len(rule.set))
	for v := range rule.set {
		rule.Values = append(rule.Values, v)
	}
	sort.Strings(rule.Values)

	return rule
}

// LoadAllowedValues reads the mandatory allowed-values table. The header
// names the required columns; the non-empty cells below each header are
// that column's allowed values. A header with nothing below it contributes
// no column.
func LoadAllowedValues(path string, settings config.Table) (*AllowedValues, error) {
	if path == "" {
		return nil, &types.MissingReferenceError{Reason: "no file configured"}
	}
	if !source.Exists(path) {
		return nil, &types.MissingReferenceError{Path: path, Reason: "file not found"}
	}

	table, err := source.Read(path, settings)
	if err != nil {
		return nil, &types.ReferenceLoadError{Kind: "allowed values", Path: path, Err: err}
	}

	allowed := &AllowedValues{
		Source: path,
		Rules:  make(map[string]ColumnRule),
	}

	for _, column := range table.Headers {
		if _, seen := allowed.Rules[column]; seen {
			continue
		}

		var cells []string
		for _, row := range table.Rows {
			if v := table.Trimmed(row, column); v != "" {
				cells = append(cells, v)
			}
		}
		if len(cells) == 0 {
			continue
		}

		allowed.Columns = append(allowed.Columns, column)
		allowed.Rules[column] = NewColumnRule(column, cells)
	}

	if len(allowed.Columns) == 0 {
		return nil, &types.MissingReferenceError{
			Path:   path,
			Reason: "no column declares any allowed value",
			Err:    types.ErrNoColumns,
		}
	}

	return allowed, nil
}

// RequiredColumns returns the allowed-value columns in declaration order,
// followed by the cost column when it is not already declared.
func RequiredColumns(allowed *AllowedValues, costColumn string) []string {
	var required []string
	hasCost := false
	if allowed != nil {
		for _, c := range allowed.Columns {
			required = append(required, c)
			if c == costColumn {
				hasCost = true
			}
		}
	}
	if !hasCost && costColumn != "" {
		required = append(required, costColumn)
	}
	return required
}

// Describe renders a rule for humans, e.g. `any`, `A, B (blank allowed)`.
func (r ColumnRule) Describe() string {
	var desc string
	if r.Restriction == Unrestricted {
		desc = TokenAny
	} else if len(r.Values) > 0 {
		desc = strings.Join(r.Values, ", ")
	} else {
		desc = "no values"
	}
	if r.EmptyPermitted {
		desc = fmt.Sprintf("%s (blank allowed)", desc)
	}
	return desc
}
