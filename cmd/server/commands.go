package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/api"
	"github.com/jimdaga/opportunity-finder/internal/config"
	"github.com/jimdaga/opportunity-finder/internal/database"
	"github.com/jimdaga/opportunity-finder/internal/worker"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the daily schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			a.scheduler.Start()

			var stopWorker func()
			if a.cfg.RedisURL != "" {
				stopWorker, err = worker.Start(a.cfg.RedisURL, a.logger, a.scheduler)
				if err != nil {
					a.logger.Warn("Task worker disabled", "error", err)
				}
			}

			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           api.NewRouter(a.db, a.scheduler, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("Starting server", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			var serveErr error
			select {
			case <-cmd.Context().Done():
			case serveErr = <-errCh:
			}

			a.logger.Info("Shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				a.logger.Error("Server shutdown failed", "error", err)
			}
			if stopWorker != nil {
				stopWorker()
			}
			if err := a.scheduler.Stop(ctx); err != nil {
				a.logger.Error("Scheduler shutdown failed", "error", err)
			}
			return serveErr
		},
	}
}

func workerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the daily schedule and process queued runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.RedisURL == "" {
				return fmt.Errorf("REDIS_URL is required for the worker")
			}

			a.scheduler.Start()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = a.scheduler.Stop(ctx)
			}()

			// Run blocks until SIGINT/SIGTERM
			return worker.Run(a.cfg.RedisURL, a.logger, a.scheduler)
		},
	}
}

func runOnceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run-once",
		Short: "Execute a single discovery run and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.scheduler.Trigger(cmd.Context())
		},
	}
}

func triggerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Queue a discovery run for a worker process",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.RedisURL == "" {
				return fmt.Errorf("REDIS_URL is required to queue a run")
			}

			enqueuer, err := worker.NewEnqueuer(a.cfg.RedisURL)
			if err != nil {
				return err
			}
			defer enqueuer.Close()

			id, err := enqueuer.EnqueueRunDiscovery(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to queue discovery run: %w", err)
			}
			a.logger.Info("Discovery run queued", "task_id", id)
			return nil
		},
	}
}

func migrateCommand() *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations, or roll back with --down",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := worker.NewLogger(cfg.LogLevel, cfg.LogFormat)

			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required to run migrations")
			}

			db, err := database.Init(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if down > 0 {
				return database.RollbackMigrations(db, down, logger)
			}
			return database.RunMigrations(db, logger)
		},
	}

	cmd.Flags().IntVar(&down, "down", 0, "number of migrations to roll back")
	return cmd
}
