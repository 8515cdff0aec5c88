package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := openDatabase(cfg); err != nil {
			return err
		}
		log.Printf("Database schema is up to date (%s)", cfg.DBDriver)
		return nil
	},
}
