// =============================================================================
// Bill Validator - Version Command
// =============================================================================
//
// This file defines the 'version' command. Besides build information it
// lists the per-bill checks this build runs, so a report can be matched
// to the validator that produced it.
//
// COMMAND USAGE:
//   billcheck version [--short]
//
// OUTPUT:
//   Bill Validator 1.0.0 (built 2024-01-01, go1.24.0)
//   Checks:     columns_present, no_missing_values, ...
//   Env prefix: BILLCHECK_
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/validation"
)

// Version and BuildDate are set at build time:
//   go build -ldflags "-X 'github.com/ginjaninja78/bill-validator/cmd.Version=1.0.0' -X 'github.com/ginjaninja78/bill-validator/cmd.BuildDate=2024-01-01'"
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

var shortVersion bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the validator version and the checks it runs",
	// No configuration is needed to describe the build.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout(), shortVersion)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&shortVersion, "short", false, "Print the version number only")
	rootCmd.AddCommand(versionCmd)
}

func writeVersion(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, Version)
		return err
	}

	checks := make([]string, len(validation.CheckOrder))
	for i, name := range validation.CheckOrder {
		checks[i] = string(name)
	}

	_, err := fmt.Fprintf(w, "Bill Validator %s (built %s, %s)\nChecks:     %s\nEnv prefix: %s_\n",
		Version, BuildDate, runtime.Version(), strings.Join(checks, ", "), config.EnvPrefix)
	return err
}
