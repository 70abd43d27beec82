package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mynd-backend/internal/config"
	"mynd-backend/internal/db"
	"mynd-backend/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "mynd",
	Short:         "mYnd planning backend",
	Long:          `mynd serves the planning API, applies the schema and prints a user's plan for today.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(planCmd)
}

// app is what every subcommand starts from.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *db.DB
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, db.Driver(cfg.DBDriver), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	log.Info("database connected", zap.String("driver", cfg.DBDriver))

	return &app{cfg: cfg, log: log, db: database}, nil
}

func (a *app) close() {
	_ = a.db.Close()
	_ = a.log.Sync()
}
