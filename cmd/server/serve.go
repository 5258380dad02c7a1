package main

import (
	"os/signal"
	"syscall"
	"time"

	"resume-matcher/internal/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.Build(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		errCh := make(chan error, 1)
		go func() {
			log.Info("listening",
				zap.String("address", cfg.Server.Address),
				zap.String("database", cfg.Database.Driver),
				zap.Bool("redis", cfg.Redis.Enabled()),
			)
			errCh <- a.HTTP.Listen(cfg.Server.Address)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		if err := a.HTTP.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
