// =============================================================================
// Bill Validator - File Manager Utility
// =============================================================================
//
// This module provides the file helpers the CLI needs around a validation
// run:
//   - Report file naming
//   - Output path resolution (file or directory)
//   - Directory management
//
// REPORT NAMING:
//   When --output names a directory, the report file name is generated from
//   output.file_name_format. The report content itself never contains the
//   generated values.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a file name from a format string.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {format}    - Report file extension (txt, json, yaml, xlsx)
//   - params: Additional placeholder values, keyed without braces.
//
// RETURNS:
//   - The generated file name, ending in the extension of the report
//     format when params carries one.
//
// EXAMPLE:
//   format: "billcheck_{timestamp}_{uuid}.{format}"
//   params: {"format": "json"}
//   output: "billcheck_20240115_143022_a1b2c3d4-e5f6-7890-abcd-ef1234567890.json"
func GenerateOutputFileName(format string, params map[string]string) string {
	return generateFileName(format, params, time.Now(), uuid.New().String())
}

func generateFileName(format string, params map[string]string, now time.Time, id string) string {
	replacements := map[string]string{
		"{uuid}":      id,
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}
	ext := Extension(params["format"])
	if ext != "" {
		replacements["{format}"] = strings.TrimPrefix(ext, ".")
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), ext) {
		result += ext
	}

	return result
}

// Extension returns the file extension used for a report format.
func Extension(format string) string {
	switch format {
	case "text":
		return ".txt"
	case "json", "yaml", "xlsx":
		return "." + format
	}
	return ""
}

// =============================================================================
// OUTPUT PATHS
// =============================================================================

// ResolveOutputPath decides where a report is written.
//
// PARAMETERS:
//   - path: The --output value. An existing directory, or a value ending in
//           a path separator, receives a generated file name.
//   - nameFormat: output.file_name_format.
//   - format: The report format.
//
// RETURNS:
//   - The report file path.
func ResolveOutputPath(path, nameFormat, format string) string {
	if strings.HasSuffix(path, string(os.PathSeparator)) || strings.HasSuffix(path, "/") || IsDir(path) {
		name := GenerateOutputFileName(nameFormat, map[string]string{"format": format})
		return filepath.Join(path, name)
	}
	return path
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
