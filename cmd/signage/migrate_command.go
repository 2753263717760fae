package main

import (
	"signage_server/pkg/colors"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeDB, err := ctx.openStore(true)
			if err != nil {
				return err
			}
			defer closeDB()
			colors.PrintSuccess("Database schema is up to date")
			return nil
		},
	}
}
