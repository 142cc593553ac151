// =============================================================================
// Bill Validator - XLSX Table Parser
// =============================================================================
//
// This module reads a worksheet of an .xlsx workbook into the same table
// shape the CSV parser produces. Bills and reference lists are frequently
// kept as workbooks; reading them directly avoids a manual CSV export step
// and keeps the reported row numbers identical to the ones Excel shows.
//
// SHEET SELECTION:
//   - settings.Sheet when set
//   - otherwise the first sheet of the workbook
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/types"
)

// Parse reads one worksheet of an XLSX file and returns it as a table.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//   - settings: The shared table settings (sheet name).
//
// RETURNS:
//   - The parsed table.
//   - An error if the workbook or sheet cannot be read.
func Parse(filePath string, settings config.Table) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := settings.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, types.ErrEmptyTable
	}

	headers := cleanHeaders(rows[0])

	data := make([]types.Row, 0, len(rows)-types.HeaderRows)
	for i, cells := range rows[types.HeaderRows:] {
		data = append(data, types.Row{
			Number: types.DisplayRow(i),
			Cells:  cells,
		})
	}

	return types.NewTable(filePath, headers, data), nil
}

// cleanHeaders mirrors the CSV parser: trimmed, blank headers named by
// column position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = h
	}
	return cleaned
}
