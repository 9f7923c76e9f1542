package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/servicedesk/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}
	cmd.AddCommand(
		newMigrationStep("up", "Apply all pending migrations", persistence.MigrateUp),
		newMigrationStep("down", "Roll back the latest migration", persistence.MigrateDown),
		newMigrationStep("status", "Show migration status", persistence.MigrateStatus),
	)
	return cmd
}

func newMigrationStep(use, short string, command persistence.MigrationCommand) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()
			return persistence.Migrate(cmd.Context(), rt.pg.PoolHandle(), command, rt.logger)
		},
	}
}
