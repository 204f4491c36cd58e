package main

import (
	"fmt"
	"os"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/srg/attdb/pkg/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// formatVersion adds 'v' prefix if version starts with a digit
func formatVersion(ver string) string {
	if len(ver) > 0 && unicode.IsDigit(rune(ver[0])) {
		return "v" + ver
	}
	return ver
}

// newRootCmd builds the command tree. Commands are created per call so tests
// get fresh flag state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "attdb",
		Short: "GATT attribute database compiler",
		Long: `Compiles a declarative description of BLE GATT services into the flat
attribute table consumed by an embedded GATT server, together with the read and
write dispatch glue that routes attribute requests to application handlers.

- compile: emit Go source, a JSON or YAML artifact, or a text table
- check:   validate a source file without writing output
- inspect: print the attribute table and the GATT hierarchy it describes`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", formatVersion(version), commit, date),
	}

	// Silence Cobra's "Error:" prefix - main() prints clean errors
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(newCompileCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newInspectCmd())

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Debug logging (same as --log-level debug)")
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default: ./"+config.DefaultFile+" when present)")

	// Add -v as a short flag for --version
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", FormatUserError(err))
		os.Exit(1)
	}
}
