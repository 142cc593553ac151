// =============================================================================
// Bill Validator - CSV Parser Module
// =============================================================================
//
// This module parses the comma-separated input tables: the bill table and
// the three reference tables. All of them share one layout:
//   - exactly one header row (display row 1)
//   - data rows from display row 2 onwards
//   - UTF-8 text, optionally starting with a byte order mark
//
// Data rows are kept in file order. Rows whose cells are all empty (",,")
// are kept and consumers decide what they mean. Lines with no characters
// at all are skipped by encoding/csv and take no row number, so display
// rows count the non-blank lines after the header (see types.DisplayRow).
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/types"
)

// utf8BOM is stripped from the first header cell when present.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns it as a table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The shared table settings (delimiter).
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be opened or is not valid CSV.
func Parse(filePath string, settings config.Table) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, filePath, settings)
}

// ParseReader parses CSV content from r. source is recorded on the table
// for error reporting.
func ParseReader(r io.Reader, source string, settings config.Table) (*types.Table, error) {
	reader := bufio.NewReader(r)
	if head, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = reader.Discard(len(utf8BOM))
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, types.ErrEmptyTable
	}

	headers := cleanHeaders(allRows[0])
	rows := extractDataRows(allRows[types.HeaderRows:])

	return types.NewTable(source, headers, rows), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.Table) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if r := []rune(settings.Delimiter); len(r) > 0 {
			reader.Comma = r[0]
		} else {
			reader.Comma = ','
		}
	}

	// Spreadsheet exports often carry ragged rows.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// cleanHeaders trims header values and names empty headers by position,
// so every column remains addressable.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows numbers the data rows. Cell text is kept verbatim;
// trimming happens where values are compared.
func extractDataRows(records [][]string) []types.Row {
	rows := make([]types.Row, len(records))
	for i, record := range records {
		rows[i] = types.Row{
			Number: types.DisplayRow(i),
			Cells:  record,
		}
	}
	return rows
}
