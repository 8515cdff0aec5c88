// Package cmd holds the command line entry points of the tracker.
package cmd

import (
	"fmt"

	"github.com/ariebrainware/aba-tracker/config"
	"github.com/ariebrainware/aba-tracker/model"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "aba-tracker",
	Short: "ABA therapy goal tracker API",
	Long: `aba-tracker serves the HTTP API used by therapists to manage
discrimination goals, assign them to patients and record sessions.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration and installs the JWT secret.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	util.SetJWTSecret(cfg.JWTSecret)
	return cfg, nil
}

// openDatabase connects to the configured database and migrates the schema.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := model.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
