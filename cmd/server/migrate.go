package main

import (
	"context"
	"log"
	"os"
	"time"

	"job-board/internal/config"
	"job-board/internal/database/migration"
	dbpostgres "job-board/internal/database/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			db, err := dbpostgres.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			logger := log.New(os.Stdout, "", log.LstdFlags)
			return migration.Runner{Logger: logger}.Run(ctx, db.SQLDB())
		},
	}
}
