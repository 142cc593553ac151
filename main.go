// =============================================================================
// Bill Validator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the billcheck CLI. It delegates command
// execution to the cmd package.
//
// USAGE:
//   billcheck validate     - Validate a bill table and print the report
//   billcheck references   - Load and print the reference tables
//   billcheck version      - Display the application version
//
// ARCHITECTURE:
//   - cmd/                : CLI command definitions (Cobra)
//   - internal/config     : YAML configuration, defaults, overrides
//   - internal/reference  : allowed values, exclusions, work code loaders
//   - internal/validation : row classifier and per-bill check suite
//   - internal/engine     : validation state machine and report
//   - internal/report     : text, JSON, YAML and XLSX renderers
//   - pkg/utils           : logging and file helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/bill-validator/cmd"
)

func main() {
	cmd.Execute()
}
