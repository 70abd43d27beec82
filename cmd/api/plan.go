package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"mynd-backend/internal/planner"
	"mynd-backend/internal/store"
	"mynd-backend/internal/tasks"
)

var planUserID string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print today's plan for a user as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if planUserID == "" {
			return errors.New("--user is required")
		}

		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		svc := tasks.NewService(store.New(a.db), a.log, planner.Now)
		p, err := svc.Plan(cmd.Context(), planUserID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

func init() {
	planCmd.Flags().StringVarP(&planUserID, "user", "u", "", "user id")
}
