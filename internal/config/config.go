// =============================================================================
// Bill Validator - Configuration Module
// =============================================================================
//
// This module loads the run configuration: which files to read, how the bill
// table names its columns, the coordination-charge rule and how findings are
// rendered.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults (Default)
//   2. YAML file (billcheck.yaml, read with yaml.v3)
//   3. Command-line flags and BILLCHECK_* environment variables
//      (applied by the cmd package through viper)
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

// AbsentPolicy decides the coordination check outcome for an invoice that
// has no coordination-charge row.
type AbsentPolicy string

const (
	// AbsentFail treats a missing coordination charge as an omission.
	AbsentFail AbsentPolicy = "fail"

	// AbsentPass treats a missing coordination charge as "not applicable".
	AbsentPass AbsentPolicy = "pass"
)

// MatchMode is how the coordination marker is compared to a cell.
type MatchMode string

const (
	// MatchEquals requires the trimmed cell to equal the marker exactly.
	MatchEquals MatchMode = "equals"

	// MatchContains requires the cell to contain the marker, ignoring case.
	MatchContains MatchMode = "contains"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete validator configuration.
type Config struct {
	Files          Files        `yaml:"files"`
	Columns        Columns      `yaml:"columns"`
	NumericColumns []string     `yaml:"numeric_columns"`
	Coordination   Coordination `yaml:"coordination"`
	Table          Table        `yaml:"table"`
	Output         Output       `yaml:"output"`
	Logging        Logging      `yaml:"logging"`
}

// Files lists the input tables.
type Files struct {
	// Bill is the bill line-item table. Required.
	Bill string `yaml:"bill"`

	// AllowedValues declares the required columns and their permitted
	// values. Required.
	AllowedValues string `yaml:"allowed_values"`

	// Exclusions holds conjunctive exclusion rules. Optional.
	Exclusions string `yaml:"exclusions"`

	// WorkCodes holds valid (work code, work name) pairs. Optional.
	WorkCodes string `yaml:"work_codes"`
}

// Columns names the bill table columns the engine reads directly.
type Columns struct {
	Serial   string `yaml:"serial"`
	Invoice  string `yaml:"invoice"`
	WorkCode string `yaml:"work_code"`
	Work     string `yaml:"work"`
	Item     string `yaml:"item"`
	Cost     string `yaml:"cost"`
}

// Coordination configures the coordination-charge check.
type Coordination struct {
	// Percentage of the base amount expected as coordination charge
	// (15 means 15%).
	Percentage float64 `yaml:"percentage"`

	// Tolerance is the absolute currency difference still accepted.
	Tolerance float64 `yaml:"tolerance"`

	// Column, Match and Marker identify coordination rows. Exactly one
	// convention is active per run.
	Column string    `yaml:"column"`
	Match  MatchMode `yaml:"match"`
	Marker string    `yaml:"marker"`

	// AbsentPolicy decides the outcome for invoices with no coordination row.
	AbsentPolicy AbsentPolicy `yaml:"absent_policy"`
}

// Table holds parsing settings shared by every input table.
type Table struct {
	// Delimiter is the CSV field separator. Default: ","
	Delimiter string `yaml:"delimiter"`

	// Sheet is the worksheet read from .xlsx inputs. Empty means the first.
	Sheet string `yaml:"sheet"`
}

// Output controls report rendering.
type Output struct {
	// Format is one of text, json, yaml, xlsx.
	Format string `yaml:"format"`

	// Path is a file or directory for the rendered report. Empty means
	// stdout (not allowed for xlsx).
	Path string `yaml:"path"`

	// FileNameFormat names reports written into a directory.
	// Placeholders: {uuid}, {timestamp}, {format}
	FileNameFormat string `yaml:"file_name_format"`
}

// Logging configures the zap logger.
type Logging struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the configuration used when no file is given. Numeric
// defaults live here rather than in applyDefaults so that an explicit zero
// tolerance in a file is kept.
func Default() *Config {
	cfg := &Config{
		Coordination: Coordination{
			Percentage: 15,
			Tolerance:  10,
		},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML configuration file, applies defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{
		Coordination: Coordination{
			Percentage: 15,
			Tolerance:  10,
		},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for any unset option.
func applyDefaults(cfg *Config) {
	if cfg.Columns.Serial == "" {
		cfg.Columns.Serial = "S.n"
	}
	if cfg.Columns.Invoice == "" {
		cfg.Columns.Invoice = "Contract Bill No"
	}
	if cfg.Columns.WorkCode == "" {
		cfg.Columns.WorkCode = "Work code"
	}
	if cfg.Columns.Work == "" {
		cfg.Columns.Work = "Work"
	}
	if cfg.Columns.Item == "" {
		cfg.Columns.Item = "Item"
	}
	if cfg.Columns.Cost == "" {
		cfg.Columns.Cost = "Cost"
	}

	if len(cfg.NumericColumns) == 0 {
		cfg.NumericColumns = []string{cfg.Columns.Cost, "Rate per unit", "Quantity"}
	}

	if cfg.Coordination.Column == "" {
		cfg.Coordination.Column = cfg.Columns.Item
	}
	if cfg.Coordination.Match == "" {
		cfg.Coordination.Match = MatchContains
	}
	if cfg.Coordination.Marker == "" {
		cfg.Coordination.Marker = "coordination charge"
	}
	if cfg.Coordination.AbsentPolicy == "" {
		cfg.Coordination.AbsentPolicy = AbsentFail
	}

	if cfg.Table.Delimiter == "" {
		cfg.Table.Delimiter = ","
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = "text"
	}
	if cfg.Output.FileNameFormat == "" {
		cfg.Output.FileNameFormat = "billcheck_{timestamp}_{uuid}.{format}"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = "stderr"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate checks value ranges and enumerations. File presence is not
// checked here; the engine reports missing files with typed errors.
func (c *Config) Validate() error {
	if c.Coordination.Percentage <= 0 {
		return fmt.Errorf("coordination.percentage must be a positive number, got %v", c.Coordination.Percentage)
	}
	if c.Coordination.Tolerance < 0 {
		return fmt.Errorf("coordination.tolerance must not be negative, got %v", c.Coordination.Tolerance)
	}

	switch c.Coordination.AbsentPolicy {
	case AbsentFail, AbsentPass:
	default:
		return fmt.Errorf("coordination.absent_policy must be %q or %q, got %q",
			AbsentFail, AbsentPass, c.Coordination.AbsentPolicy)
	}

	switch c.Coordination.Match {
	case MatchEquals, MatchContains:
	default:
		return fmt.Errorf("coordination.match must be %q or %q, got %q",
			MatchEquals, MatchContains, c.Coordination.Match)
	}

	if strings.TrimSpace(c.Coordination.Marker) == "" {
		return fmt.Errorf("coordination.marker must not be blank")
	}

	switch c.Output.Format {
	case "text", "json", "yaml", "xlsx":
	default:
		return fmt.Errorf("output.format must be one of text, json, yaml, xlsx, got %q", c.Output.Format)
	}

	if len([]rune(c.Table.Delimiter)) != 1 && !isNamedDelimiter(c.Table.Delimiter) {
		return fmt.Errorf("table.delimiter must be a single character, got %q", c.Table.Delimiter)
	}

	return nil
}

// Finalize re-applies defaults and validates after overrides have been
// merged into an already loaded configuration.
func (c *Config) Finalize() error {
	applyDefaults(c)
	return c.Validate()
}

func isNamedDelimiter(d string) bool {
	switch d {
	case "\\t", "tab", "TAB", "pipe", "PIPE", "semicolon":
		return true
	}
	return false
}
