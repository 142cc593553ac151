package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// numericEpsilon is the absolute difference under which two numeric cells
// are considered equal by exclusion conditions.
var numericEpsilon = decimal.New(1, -9)

var hundred = decimal.NewFromInt(100)

// ParseNumber parses a trimmed cell as a decimal number. Empty or
// malformed text reports false.
func ParseNumber(value string) (decimal.Decimal, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// amount is the cost view used in sums: malformed or empty costs count
// as zero. The numeric_values check reports them separately.
func amount(value string) decimal.Decimal {
	d, _ := ParseNumber(value)
	return d
}
