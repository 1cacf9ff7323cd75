package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect and control the database schema version",
	}
	cmd.AddCommand(migrateStatusCmd(app))
	cmd.AddCommand(migrateRollbackCmd(app))
	return cmd
}

func migrateStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := app.Migrations.Status(cmdContext())
			if err != nil {
				return err
			}
			fmt.Printf("Current version: %s\n", status.CurrentVersion)
			for _, v := range status.Applied {
				fmt.Printf("  applied  %s\n", v)
			}
			for _, v := range status.Pending {
				fmt.Printf("  pending  %s\n", v)
			}
			return nil
		},
	}
}

func migrateRollbackCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <target-version>",
		Short: "Revert migrations down to (and keeping) the target version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reverted, err := app.Migrations.Rollback(cmdContext(), args[0])
			if err != nil {
				return err
			}
			if len(reverted) == 0 {
				fmt.Println("Nothing to roll back")
				return nil
			}
			for _, v := range reverted {
				fmt.Printf("  reverted %s\n", v)
			}
			return nil
		},
	}
}
