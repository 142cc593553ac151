// Package source opens input tables, choosing the parser by file extension.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/csvparser"
	"github.com/ginjaninja78/bill-validator/internal/types"
	"github.com/ginjaninja78/bill-validator/internal/xlsxparser"
)

// Read parses the table at path. Files ending in .xlsx or .xlsm are read
// as workbooks; .csv, .txt and extension-less files as CSV.
func Read(path string, settings config.Table) (*types.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return xlsxparser.Parse(path, settings)
	case ".csv", ".txt", "":
		return csvparser.Parse(path, settings)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedFile, ext)
	}
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
