package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"job-board/internal/config"
	dbpostgres "job-board/internal/database/postgres"
	"job-board/internal/database/seeder"

	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users and jobs for local development",
		Long: `Creates ` + seeder.DemoRecruiterEmail + ` and ` + seeder.DemoApplicantEmail + `
with the password from SEED_PASSWORD, plus a few sample jobs. Safe to run again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := os.Getenv("SEED_PASSWORD")
			if password == "" {
				return errors.New("SEED_PASSWORD is required")
			}

			cfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := dbpostgres.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			runner := seeder.Runner{
				Seeders: seeder.Defaults(password),
				Logger:  log.New(os.Stdout, "", log.LstdFlags),
			}
			if err := runner.Run(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
			return nil
		},
	}
}
