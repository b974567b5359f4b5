package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/api"
	"github.com/bobby-s-dev/weather-buddy/internal/config"
	"github.com/bobby-s-dev/weather-buddy/internal/scheduler"
)

func serveCommand(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with scheduled refreshes and notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), rt)
		},
	}
}

func serve(ctx context.Context, rt *cli) error {
	cfg, logger := rt.cfg, rt.logger
	logger.Info("Starting Weather Buddy")

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	a.notifier.Start()

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	a.store.Init(initCtx)
	cancel()
	logReminder(a, logger)

	refresher := scheduler.NewScheduler(a.store, cfg.Scheduler.RefreshInterval, logger, a.metrics)
	app := newServer(cfg, a, refresher, logger)

	refresher.Start()
	defer refresher.Stop()

	listenErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))
		listenErr <- app.Listen(addr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-listenErr:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			return err
		}
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
	return nil
}

func newServer(cfg *config.Config, a *app, refresher *scheduler.Scheduler, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: api.ErrorHandler,
	})

	handler := api.NewHandler(a.store, a.searcher, refresher, logger)
	api.SetupRoutes(app, handler, a.registry, logger)
	return app
}

func logReminder(a *app, logger *zap.Logger) {
	r := a.store.Snapshot().Prefs.DailyReminder
	if !r.Enabled || r.NotificationID == "" {
		return
	}
	next, ok := a.notifier.NextRun(r.NotificationID, time.Now())
	if !ok {
		return
	}
	logger.Info("Daily reminder scheduled",
		zap.Time("next_run", next),
		zap.Int("scheduled", a.notifier.Scheduled()))
}
