package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "servicedesk",
		Short:         "Technical service desk API",
		Long:          `servicedesk tracks service tickets and the work performed under them, keeping warehouse stock and ticket totals in step.`,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newUsersCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
