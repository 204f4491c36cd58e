package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	flags := &sourceFlags{}
	cmd := &cobra.Command{
		Use:   "check <source>...",
		Short: "Validate source files without writing output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, flags)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// runCheck compiles every file and stops at the first failure.
func runCheck(cmd *cobra.Command, paths []string, flags *sourceFlags) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, cfg); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	logger := configureLogger(cmd, cfg)
	for _, path := range paths {
		res, err := compileSource(path, cfg, logger)
		if err != nil {
			return err
		}
		db := res.Database
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s grammar, %d records, %d services, %d read routes, %d write routes)\n",
			path, res.Grammar, db.Len(), db.ServiceCount(), len(db.ReadRoutes()), len(db.WriteRoutes()))
	}
	return nil
}
