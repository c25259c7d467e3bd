package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"job-board/internal/config"
	dbpostgres "job-board/internal/database/postgres"
	"job-board/internal/repository"
	ucauth "job-board/internal/usecase/auth"

	"github.com/spf13/cobra"
)

// Admin accounts are provisioned here rather than through public sign-up.
func newCreateAdminCommand() *cobra.Command {
	var email, name string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN account",
		Example: `  job-board create-admin --email ops@example.com --name "Ops"
  echo "$ADMIN_PASSWORD" | job-board create-admin --email ops@example.com --name Ops --password-stdin`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := os.Getenv("ADMIN_PASSWORD")
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password required: set ADMIN_PASSWORD or use --password-stdin")
			}

			cfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := dbpostgres.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := ucauth.NewService(repository.NewPostgresUserRepository(db), ucauth.Options{})
			u, err := svc.CreateAdmin(ctx, email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin id=%s email=%s\n", u.ID, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&name, "name", "", "admin display name")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
