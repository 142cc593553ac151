package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/bill-validator/internal/engine"
	"github.com/ginjaninja78/bill-validator/internal/reference"
	"github.com/ginjaninja78/bill-validator/internal/validation"
)

const (
	markPass = "✓"
	markFail = "✗"
	rule60   = "============================================================"
	rule40   = "----------------------------------------"
)

// CheckDescription returns the human description of a check for a report.
func CheckDescription(name validation.CheckName, r *engine.Report) string {
	switch name {
	case validation.ColumnsPresent:
		return "All required columns are present in the file"
	case validation.NoMissingValues:
		return "No missing (empty) values in required columns for this bill"
	case validation.CoordinationCorrect:
		return fmt.Sprintf("Coordination charge (%s) is correct within tolerance (±%s) using %s%% of base amount",
			r.CoordinationRule, formatFloat(r.Tolerance), formatFloat(r.Percentage))
	case validation.AllowedValues:
		return "All values in specified columns belong to the allowed set"
	case validation.NumericValues:
		return "Numeric columns contain only numbers"
	case validation.WorkPairsValid:
		return "Every row has a work code and work name forming a registered pair"
	}
	return string(name)
}

// WriteText renders the console layout.
func WriteText(w io.Writer, r *engine.Report) error {
	var buf bytes.Buffer

	if !r.GlobalColumnsOK {
		fmt.Fprintf(&buf, "%s Missing columns: %s\n\n", markFail, strings.Join(r.MissingColumns, ", "))
	} else {
		fmt.Fprintf(&buf, "%s All required columns present.\n\n", markPass)
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(&buf, "Warning: %s\n", warning)
	}
	if len(r.Warnings) > 0 {
		buf.WriteString("\n")
	}

	writeReferences(&buf, r.Exclusions, r.Allowed, r.WorkCodes)

	if !r.GlobalColumnsOK {
		buf.WriteString("Per-bill checks skipped.\n")
		_, err := w.Write(buf.Bytes())
		return err
	}

	buf.WriteString("VALIDATION RULES\n")
	buf.WriteString(rule60 + "\n")
	for _, name := range validation.CheckOrder {
		fmt.Fprintf(&buf, "• %s: %s\n", name, CheckDescription(name, r))
	}
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "Checking %d bills with %s%% coordination...\n\n", r.TotalBills, formatFloat(r.Percentage))

	for _, id := range r.Invoices {
		writeBill(&buf, r.Results[id])
	}

	passed, failed := r.Passed(), r.Failed()
	buf.WriteString(rule60 + "\n")
	buf.WriteString("FINAL SUMMARY\n")
	buf.WriteString(rule60 + "\n")
	fmt.Fprintf(&buf, "Total bills processed: %d\n", r.TotalBills)
	fmt.Fprintf(&buf, "%s Bills passed all checks: %d%s\n", markPass, len(passed), listSuffix(passed))
	fmt.Fprintf(&buf, "%s Bills failed one or more checks: %d%s\n", markFail, len(failed), listSuffix(failed))
	fmt.Fprintf(&buf, "\n%d out of %d bills passed.\n", len(passed), r.TotalBills)

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteReferences renders a reference bundle on its own.
func WriteReferences(w io.Writer, b *reference.Bundle) error {
	var buf bytes.Buffer

	for _, warning := range b.Warnings {
		fmt.Fprintf(&buf, "Warning: %s\n", warning)
	}

	var diag *reference.WorkCodeDiagnostics
	if b.WorkCodes != nil {
		diag = &b.WorkCodes.Diagnostics
		fmt.Fprintf(&buf, "Work code reference: %d pairs from %s\n\n", len(b.WorkCodes.Pairs), b.WorkCodes.Source)
	} else {
		buf.WriteString("No work code reference loaded.\n\n")
	}

	writeReferences(&buf, b.Exclusions, b.Allowed, diag)

	_, err := w.Write(buf.Bytes())
	return err
}

func writeReferences(buf *bytes.Buffer, rules []reference.ExclusionRule, allowed *reference.AllowedValues, diag *reference.WorkCodeDiagnostics) {
	if len(rules) > 0 {
		buf.WriteString("Loaded exclusion rules:\n")
		for _, rule := range rules {
			fmt.Fprintf(buf, "   row %d: %s\n", rule.Row, rule)
		}
		buf.WriteString("\n")
	}

	if allowed != nil && len(allowed.Columns) > 0 {
		buf.WriteString("Loaded allowed values for columns:\n")
		for _, column := range allowed.Columns {
			fmt.Fprintf(buf, "   %s: %s\n", column, allowed.Rules[column].Describe())
		}
		buf.WriteString("\n")
	}

	if diag != nil && !diag.Clean() {
		buf.WriteString("Work code reference problems:\n")
		if len(diag.MissingCode) > 0 {
			fmt.Fprintf(buf, "   Missing work code at rows: %s\n", joinInts(diag.MissingCode))
		}
		if len(diag.MissingName) > 0 {
			fmt.Fprintf(buf, "   Missing work name at rows: %s\n", joinInts(diag.MissingName))
		}
		names := make([]string, 0, len(diag.NameWithMultipleCodes))
		for name := range diag.NameWithMultipleCodes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := diag.NameWithMultipleCodes[name]
			fmt.Fprintf(buf, "   '%s' has codes %s at rows: %s\n", name, strings.Join(c.Codes, ", "), joinInts(c.Rows))
		}
		buf.WriteString("\n")
	}
}

func writeBill(buf *bytes.Buffer, res *validation.BillResult) {
	fmt.Fprintf(buf, "%s Bill %s\n", mark(res.Passed()), res.InvoiceID)
	buf.WriteString(rule40 + "\n")

	for _, name := range res.CheckNames() {
		ok := res.Checks[name]
		fmt.Fprintf(buf, "  %s %s\n", mark(ok), name)
		if !ok {
			writeDetail(buf, name, res.Details)
		}
	}
	buf.WriteString("\n")
}

func writeDetail(buf *bytes.Buffer, name validation.CheckName, d validation.Details) {
	switch name {
	case validation.NoMissingValues:
		for _, column := range sortedKeys(d.MissingValues) {
			fmt.Fprintf(buf, "      Missing in '%s' at rows: %s\n", column, joinInts(d.MissingValues[column]))
		}

	case validation.CoordinationCorrect:
		c := d.Coordination
		if !c.HasCoordination {
			buf.WriteString("      No coordination charge found\n")
			return
		}
		fmt.Fprintf(buf, "      Expected: %s, Actual: %s, Diff: %s\n",
			c.Expected.StringFixed(2), c.Actual.StringFixed(2), c.Difference.StringFixed(2))
		fmt.Fprintf(buf, "      Base amount: %s, Total amount: %s\n",
			c.BaseAmount.StringFixed(2), c.TotalAmount.StringFixed(2))
		if len(c.ExcludedItems) > 0 {
			buf.WriteString("      Excluded items:\n")
			for _, item := range c.ExcludedItems {
				fmt.Fprintf(buf, "        - row %d: %s (Code: %s): %s\n",
					item.Row, item.Item, item.WorkCode, item.Cost.StringFixed(2))
			}
		}

	case validation.AllowedValues:
		for _, column := range sortedKeys(d.AllowedViolations) {
			fmt.Fprintf(buf, "      Invalid values in '%s': %s\n", column, strings.Join(d.AllowedViolations[column], ", "))
		}

	case validation.NumericValues:
		for _, column := range sortedKeys(d.NumericViolations) {
			fmt.Fprintf(buf, "      Non-numeric values in '%s' at rows: %s\n", column, joinInts(d.NumericViolations[column]))
		}

	case validation.WorkPairsValid:
		p := d.WorkPairs
		if p == nil {
			return
		}
		if len(p.MissingCode) > 0 {
			fmt.Fprintf(buf, "      Missing work code at rows: %s\n", joinInts(p.MissingCode))
		}
		if len(p.MissingName) > 0 {
			fmt.Fprintf(buf, "      Missing work name at rows: %s\n", joinInts(p.MissingName))
		}
		for _, pair := range p.InvalidPairs {
			fmt.Fprintf(buf, "      Unregistered pair (%s, %s) at rows: %s\n", pair.Code, pair.Name, joinInts(pair.Rows))
		}
	}
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

func mark(ok bool) string {
	if ok {
		return markPass
	}
	return markFail
}

func listSuffix(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return " - " + strings.Join(ids, ", ")
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
