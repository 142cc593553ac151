// =============================================================================
// Bill Validator - Shared Types
// =============================================================================
//
// This package contains the tabular types shared by the parsers, the
// reference loaders and the validation engine. Keeping them here avoids
// import cycles between:
//   - csvparser / xlsxparser (produce tables)
//   - reference (reads reference tables)
//   - validation / engine (read bill tables)
//
// ROW NUMBERING:
//   The header always occupies display row 1, so the first data row is
//   display row 2. Every row number reported anywhere in this module is
//   computed as: zero-based data index + 2. This keeps messages
//   spreadsheet-compatible.
//
// =============================================================================

package types

import "strings"

// HeaderRows is the number of header rows every input table carries.
const HeaderRows = 1

// DisplayRow converts a zero-based data row index to its 1-based display
// row number in the source spreadsheet.
func DisplayRow(index int) int {
	return index + HeaderRows + 1
}

// =============================================================================
// TABLE TYPES
// =============================================================================

// Row is a single data row of a table.
type Row struct {
	// Number is the 1-based display row number (see DisplayRow).
	Number int

	// Cells holds the raw cell text in header order. Rows shorter than the
	// header are treated as having empty trailing cells.
	Cells []string
}

// Table is a parsed tabular input file with one header row.
type Table struct {
	// Source is the path the table was read from.
	Source string

	// Headers contains the trimmed column headers.
	Headers []string

	// Rows contains the data rows in file order.
	Rows []Row

	index map[string]int
}

// NewTable builds a table and its header index. When a header appears more
// than once, the first occurrence wins.
func NewTable(source string, headers []string, rows []Row) *Table {
	t := &Table{
		Source:  source,
		Headers: headers,
		Rows:    rows,
		index:   make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		if _, exists := t.index[h]; !exists {
			t.index[h] = i
		}
	}
	return t
}

// HasColumn reports whether the table header contains column.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// FindColumn looks a column up case-insensitively and returns the header
// spelling found in the table.
func (t *Table) FindColumn(column string) (string, bool) {
	if t.HasColumn(column) {
		return column, true
	}
	for _, h := range t.Headers {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(column)) {
			return h, true
		}
	}
	return "", false
}

// Value returns the raw cell for column in row. The boolean is false when
// the column does not exist in the table.
func (t *Table) Value(row Row, column string) (string, bool) {
	i, ok := t.index[column]
	if !ok {
		return "", false
	}
	if i >= len(row.Cells) {
		return "", true
	}
	return row.Cells[i], true
}

// Trimmed returns the whitespace-trimmed cell for column in row, or the
// empty string when the column is missing.
func (t *Table) Trimmed(row Row, column string) string {
	v, _ := t.Value(row, column)
	return strings.TrimSpace(v)
}

// IsBlank reports whether a cell is missing or empty after trimming.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
