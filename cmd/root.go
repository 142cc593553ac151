// =============================================================================
// Bill Validator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (billcheck)
//   ├── validateCmd   (billcheck validate)
//   ├── referencesCmd (billcheck references)
//   └── versionCmd    (billcheck version)
//
// CONFIGURATION PRECEDENCE (highest first):
//   1. Command-line flags
//   2. BILLCHECK_* environment variables (e.g. BILLCHECK_FILES_BILL)
//   3. The YAML configuration file (--config)
//   4. Built-in defaults
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg and logger are prepared by initConfig before any subcommand runs.
var (
	cfg    *config.Config
	logger *zap.Logger
)

// flagKeys maps flag names to configuration keys. Only flags present on
// the running command are bound.
var flagKeys = map[string]string{
	"bill":                config.KeyBill,
	"allowed":             config.KeyAllowedValues,
	"exclude":             config.KeyExclusions,
	"workcodes":           config.KeyWorkCodes,
	"percent":             config.KeyPercentage,
	"tolerance":           config.KeyTolerance,
	"absent-coordination": config.KeyAbsentPolicy,
	"coordination-column": config.KeyCoordinationColumn,
	"coordination-match":  config.KeyCoordinationMatch,
	"coordination-marker": config.KeyCoordinationMarker,
	"delimiter":           config.KeyDelimiter,
	"sheet":               config.KeySheet,
	"format":              config.KeyOutputFormat,
	"output":              config.KeyOutputPath,
	"log-level":           config.KeyLogLevel,
	"log-file":            config.KeyLogFile,
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "billcheck",
	Short: "Bill Validator - Check contract bill line items against reference rules",
	Long: `Bill Validator checks construction/contract bill line items, grouped by
Contract Bill No, against a configurable rule set.

Checks per bill:
  - columns_present       required columns exist in the bill header
  - no_missing_values     required cells are filled (unless "blank" is allowed)
  - coordination_correct  coordination charge equals a percentage of the base
  - allowed_values        cells belong to the allowed set of their column
  - numeric_values        numeric columns hold numbers
  - work_pairs_valid      work code and work name form a registered pair

Example Usage:
  billcheck validate --bill Bill.csv --allowed allowed_values.csv
  billcheck validate --config billcheck.yaml --format json --output reports/
  billcheck references --allowed allowed_values.csv --workcodes work_codes.csv`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and runs it. This is
// called by main.main().
//
// EXIT CODES:
//   0 - success
//   1 - fatal error (unreadable bill, missing references, bad configuration)
//   2 - findings reported with --fail-on-findings
func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		logger.Sync()
	}
	if err == nil {
		return
	}

	var findings *FindingsError
	if errors.As(err, &findings) {
		fmt.Fprintln(os.Stderr, findings.Error())
		os.Exit(2)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// FindingsError signals that validation completed with failed bills, or
// stopped at the column check with MissingColumns set.
type FindingsError struct {
	Failed         int
	Total          int
	MissingColumns []string
}

func (e *FindingsError) Error() string {
	if len(e.MissingColumns) > 0 {
		return fmt.Sprintf("bill table is missing columns: %s", strings.Join(e.MissingColumns, ", "))
	}
	return fmt.Sprintf("%d of %d bills failed validation", e.Failed, e.Total)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"billcheck.yaml",
		"Path to the configuration file (optional when absent)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Log destination: stderr, stdout or a file path")
}

// addReferenceFlags registers the flags shared by commands that load
// reference files.
func addReferenceFlags(flags *pflag.FlagSet) {
	flags.String("allowed", "", "Allowed values table (mandatory)")
	flags.String("exclude", "", "Exclusion rules table")
	flags.String("workcodes", "", "Work code / work name reference table")
	flags.String("delimiter", "", "CSV delimiter (default \",\")")
	flags.String("sheet", "", "Worksheet to read from .xlsx inputs (default first sheet)")
}

// initConfig loads the configuration file, overlays environment variables
// and the running command's flags, and builds the logger.
func initConfig(cmd *cobra.Command) error {
	loaded, err := loadConfigFile(cmd)
	if err != nil {
		return err
	}

	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	if verbose {
		v.Set(config.KeyLogLevel, "debug")
	}

	if err := config.ApplyOverrides(loaded, v); err != nil {
		return err
	}
	cfg = loaded

	logger, err = utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logging.Level,
		OutputPath: cfg.Logging.File,
		Format:     cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	if path := usedConfigFile(); path != "" {
		logger.Debug("Using config file", zap.String("path", path))
	}
	return nil
}

// loadConfigFile reads --config. A missing default file means built-in
// defaults; a missing file named explicitly is an error.
func loadConfigFile(cmd *cobra.Command) (*config.Config, error) {
	if usedConfigFile() == "" {
		if cmd.Flags().Changed("config") {
			return nil, fmt.Errorf("config file not found: %s", cfgFile)
		}
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

func usedConfigFile() string {
	if cfgFile == "" || !utils.FileExists(cfgFile) {
		return ""
	}
	return cfgFile
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}
