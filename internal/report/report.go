// =============================================================================
// Bill Validator - Report Writer Module
// =============================================================================
//
// This module renders an engine.Report for people and for other programs.
// It never re-derives a check outcome: everything printed comes from the
// report value.
//
// FORMATS:
//   text  - console layout: rules, per-bill checks with details, summary
//   json  - the report as indented JSON
//   yaml  - the report as YAML
//   xlsx  - a workbook with a Summary sheet and a Findings sheet
//
// =============================================================================

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/bill-validator/internal/engine"
)

// Format names a report rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatText, FormatJSON, FormatYAML, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q", name)
}

// Render writes the report to w in the given format.
//
// PARAMETERS:
//   - w: The destination.
//   - r: The report to render.
//   - format: One of the Format constants.
//
// RETURNS:
//   - An error if encoding or writing fails.
func Render(w io.Writer, r *engine.Report, format Format) error {
	switch format {
	case FormatText:
		return WriteText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode JSON report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode YAML report: %w", err)
		}
		return enc.Close()
	case FormatXLSX:
		return WriteWorkbook(w, r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// RenderFile writes the report to path, creating parent directories.
func RenderFile(path string, r *engine.Report, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := Render(f, r, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	return nil
}
