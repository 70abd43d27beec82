package main

import (
	"github.com/spf13/cobra"

	"mynd-backend/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := db.Migrate(cmd.Context(), a.db); err != nil {
			return err
		}
		a.log.Info("schema up to date")
		return nil
	},
}
