package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"linkboard/internal/config"
	"linkboard/internal/db"
	"linkboard/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		dbCfg, err := config.LoadDatabase()
		if err != nil {
			return err
		}
		if dbCfg.Driver == "memory" {
			return fmt.Errorf("nothing to migrate for the memory driver")
		}

		log := logger.New(config.LogConfig{Level: "info"})
		gdb, err := db.Open(*dbCfg, log)
		if err != nil {
			return err
		}
		defer db.Close(gdb) //nolint:errcheck

		return db.Migrate(gdb, log)
	},
}
