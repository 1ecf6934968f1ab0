package main

import (
	"github.com/spf13/cobra"

	"github.com/Akshith040/EcoScan1/internal/db"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensure()
			if err != nil {
				return err
			}
			database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return err
			}
			logger.Info("database is up to date", "driver", cfg.DBDriver)
			return database.Close()
		},
	}
}
