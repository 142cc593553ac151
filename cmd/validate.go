// =============================================================================
// Bill Validator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which runs the full validation
// of one bill table and renders the report.
//
// COMMAND USAGE:
//   billcheck validate [flags]
//
// FLAGS:
//   --bill                 Bill table (.csv or .xlsx)
//   --allowed              Allowed values table (mandatory)
//   --exclude              Exclusion rules table
//   --workcodes            Work code reference table
//   --percent              Coordination percentage (default 15)
//   --tolerance            Coordination tolerance (default 10)
//   --absent-coordination  Outcome for bills without coordination: pass|fail
//   --format               Report format: text, json, yaml, xlsx
//   --output               Report file or directory (default stdout)
//   --fail-on-findings     Exit with status 2 when any bill fails
//
// PROCESSING FLOW:
//   1. Configuration is loaded and merged by the root command
//   2. The engine loads references and the bill, then checks every bill
//   3. The report is rendered to stdout or written to a file
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/bill-validator/internal/engine"
	"github.com/ginjaninja78/bill-validator/internal/report"
	"github.com/ginjaninja78/bill-validator/pkg/utils"
)

var (
	failOnFindings bool
	showProgress   bool
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a bill table against the reference rules",
	Long: `Validate every bill (rows sharing a Contract Bill No) of a bill table.

Reference files are loaded once. When a required column is missing from the
bill header, per-bill checks are skipped and only the missing columns are
reported.`,
	RunE: runValidate,
}

func init() {
	flags := validateCmd.Flags()
	flags.String("bill", "", "Bill table (.csv or .xlsx)")
	addReferenceFlags(flags)
	flags.Float64("percent", 15, "Coordination charge percentage of the base amount")
	flags.Float64("tolerance", 10, "Accepted absolute difference for the coordination charge")
	flags.String("absent-coordination", "", "Outcome for bills without a coordination row: pass or fail")
	flags.String("coordination-column", "", "Column identifying coordination rows (default Item)")
	flags.String("coordination-match", "", "How the marker is matched: equals or contains")
	flags.String("coordination-marker", "", "Marker identifying coordination rows")
	flags.String("format", "", "Report format: text, json, yaml, xlsx")
	flags.StringP("output", "o", "", "Write the report to this file or directory")
	flags.BoolVar(&failOnFindings, "fail-on-findings", false, "Exit with status 2 when any bill fails")
	flags.BoolVar(&showProgress, "progress", false, "Print per-bill progress to stderr")

	rootCmd.AddCommand(validateCmd)
}

// runValidate is the main function for the 'validate' command.
func runValidate(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	if format == report.FormatXLSX && cfg.Output.Path == "" {
		return fmt.Errorf("xlsx reports need --output")
	}

	var progress engine.ProgressFunc
	if showProgress {
		progress = func(current, total int, invoiceID string) {
			fmt.Fprintf(os.Stderr, "Processing bill %d of %d: Bill %s\n", current, total, invoiceID)
		}
	}

	rep, err := engine.New(cfg, logger).Run(progress)
	if err != nil {
		return err
	}

	if cfg.Output.Path == "" {
		if err := report.Render(cmd.OutOrStdout(), rep, format); err != nil {
			return err
		}
	} else {
		path := utils.ResolveOutputPath(cfg.Output.Path, cfg.Output.FileNameFormat, string(format))
		if err := report.RenderFile(path, rep, format); err != nil {
			return err
		}
		logger.Info("Report written", zap.String("path", path))
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
	}

	if failOnFindings && !rep.OK() {
		return &FindingsError{Failed: len(rep.Failed()), Total: rep.TotalBills, MissingColumns: rep.MissingColumns}
	}
	return nil
}
