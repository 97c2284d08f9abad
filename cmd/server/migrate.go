package main

import (
	"log"

	"github.com/spf13/cobra"

	"linkchain/internal/db"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
				return err
			}
			log.Println("Migrations completed successfully")
			return nil
		},
	}
}
