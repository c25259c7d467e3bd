package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"job-board/internal/app"
	"job-board/internal/config"
	"job-board/internal/database/migration"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the notification hub",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(parent context.Context, cfg config.Config, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		return err
	}

	container, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	logger := container.Logger

	if migrate {
		if err := (migration.Runner{Logger: logger}).Run(parent, container.DB.SQLDB()); err != nil {
			_ = container.Close()
			return err
		}
	}

	bootstrap, cleanup, err := app.Bootstrap(container)
	if err != nil {
		_ = container.Close()
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Printf("[Server] cleanup error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return container.Hub.Run(gctx)
	})
	g.Go(func() error {
		logger.Printf("[Server] listening addr=%s env=%s", addr, cfg.App.Environment)
		return bootstrap.Fiber.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Printf("[Server] shutting down")
		return bootstrap.Fiber.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
