package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bill-validator/internal/engine"
	"github.com/ginjaninja78/bill-validator/internal/validation"
)

// Sheet names of the report workbook.
const (
	SummarySheet  = "Summary"
	FindingsSheet = "Findings"
)

var (
	summaryHeader  = []interface{}{"Contract Bill No", "Rows", "Passed", "Failed checks", "Base amount", "Expected", "Actual", "Difference"}
	findingsHeader = []interface{}{"Contract Bill No", "Check", "Column", "Rows", "Values"}
)

// WriteWorkbook renders the report as an .xlsx workbook.
//
// LAYOUT:
//   Summary  - one line per bill with its coordination arithmetic
//   Findings - one line per failed check detail (column, rows, values)
//
// When required columns are missing, Summary lists them and Findings stays
// empty.
func WriteWorkbook(w io.Writer, r *engine.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if _, err := f.NewSheet(FindingsSheet); err != nil {
		return fmt.Errorf("failed to create findings sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	summary := &sheetWriter{f: f, sheet: SummarySheet, style: bold}
	findings := &sheetWriter{f: f, sheet: FindingsSheet, style: bold}

	if !r.GlobalColumnsOK {
		summary.header([]interface{}{"Missing columns"})
		for _, column := range r.MissingColumns {
			summary.row([]interface{}{column})
		}
		findings.header(findingsHeader)
		return finish(f, w, summary, findings)
	}

	summary.header(summaryHeader)
	findings.header(findingsHeader)

	for _, id := range r.Invoices {
		res := r.Results[id]
		c := res.Details.Coordination

		summary.row([]interface{}{
			id,
			res.RowCount,
			res.Passed(),
			strings.Join(failedChecks(res), ", "),
			c.BaseAmount.InexactFloat64(),
			c.Expected.InexactFloat64(),
			c.Actual.InexactFloat64(),
			c.Difference.InexactFloat64(),
		})

		for _, line := range findingLines(res) {
			findings.row(line)
		}
	}

	summary.row([]interface{}{})
	summary.row([]interface{}{fmt.Sprintf("%d out of %d bills passed.", len(r.Passed()), r.TotalBills)})

	return finish(f, w, summary, findings)
}

func finish(f *excelize.File, w io.Writer, sheets ...*sheetWriter) error {
	for _, s := range sheets {
		if s.err != nil {
			return fmt.Errorf("failed to fill sheet %s: %w", s.sheet, s.err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetWriter appends rows to one sheet and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	style int
	next  int
	err   error
}

func (s *sheetWriter) row(values []interface{}) {
	if s.err != nil {
		return
	}
	s.next++
	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		s.err = err
		return
	}
	if len(values) == 0 {
		return
	}
	s.err = s.f.SetSheetRow(s.sheet, cell, &values)
}

func (s *sheetWriter) header(values []interface{}) {
	s.row(values)
	if s.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(values), s.next)
	if err != nil {
		s.err = err
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, s.next)
	s.err = s.f.SetCellStyle(s.sheet, first, last, s.style)
}

func failedChecks(res *validation.BillResult) []string {
	var names []string
	for _, name := range res.CheckNames() {
		if !res.Checks[name] {
			names = append(names, string(name))
		}
	}
	return names
}

// findingLines flattens the details of failed checks into sheet rows.
func findingLines(res *validation.BillResult) [][]interface{} {
	var lines [][]interface{}
	add := func(check validation.CheckName, column, rows, values string) {
		lines = append(lines, []interface{}{res.InvoiceID, string(check), column, rows, values})
	}
	d := res.Details

	for _, name := range res.CheckNames() {
		if res.Checks[name] {
			continue
		}
		switch name {
		case validation.NoMissingValues:
			for _, column := range sortedKeys(d.MissingValues) {
				add(name, column, joinInts(d.MissingValues[column]), "")
			}
		case validation.CoordinationCorrect:
			c := d.Coordination
			if !c.HasCoordination {
				add(name, "", "", "no coordination charge found")
				continue
			}
			add(name, "", joinInts(c.CoordinationRows), fmt.Sprintf("expected %s, actual %s, diff %s",
				c.Expected.StringFixed(2), c.Actual.StringFixed(2), c.Difference.StringFixed(2)))
			for _, item := range c.ExcludedItems {
				add(name, "", fmt.Sprint(item.Row), fmt.Sprintf("excluded %s (%s): %s", item.Item, item.Rule, item.Cost.StringFixed(2)))
			}
		case validation.AllowedValues:
			for _, column := range sortedKeys(d.AllowedViolations) {
				add(name, column, "", strings.Join(d.AllowedViolations[column], ", "))
			}
		case validation.NumericValues:
			for _, column := range sortedKeys(d.NumericViolations) {
				add(name, column, joinInts(d.NumericViolations[column]), "")
			}
		case validation.WorkPairsValid:
			if d.WorkPairs == nil {
				continue
			}
			if len(d.WorkPairs.MissingCode) > 0 {
				add(name, "Work code", joinInts(d.WorkPairs.MissingCode), "missing")
			}
			if len(d.WorkPairs.MissingName) > 0 {
				add(name, "Work", joinInts(d.WorkPairs.MissingName), "missing")
			}
			for _, pair := range d.WorkPairs.InvalidPairs {
				add(name, "", joinInts(pair.Rows), pair.Code+" / "+pair.Name)
			}
		}
	}
	return lines
}
