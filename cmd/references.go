package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bill-validator/internal/reference"
	"github.com/ginjaninja78/bill-validator/internal/report"
)

// referencesCmd loads the reference files without a bill and prints what
// was loaded, including work code reference defects.
var referencesCmd = &cobra.Command{
	Use:   "references",
	Short: "Load and print the reference files",
	Long: `Load the allowed values, exclusion and work code tables exactly as a
validation run would, and print them with any problems found. Use this to
check reference files before validating bills.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := reference.Load(cfg.Files, cfg.Table, logger)
		if err != nil {
			return err
		}
		return report.WriteReferences(cmd.OutOrStdout(), bundle)
	},
}

func init() {
	addReferenceFlags(referencesCmd.Flags())
	rootCmd.AddCommand(referencesCmd)
}
