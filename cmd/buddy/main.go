package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/config"
)

// cli is shared by every subcommand once PersistentPreRunE has run.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
	level  zap.AtomicLevel
	debug  bool
}

func main() {
	// Initialize logger
	zcfg := zap.NewProductionConfig()
	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	rt := &cli{logger: logger, level: zcfg.Level}

	if err := rootCommand(rt).ExecuteContext(context.Background()); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}

func rootCommand(rt *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "buddy",
		Short:        "Weather Buddy",
		Long:         "A kid-friendly weather companion: forecasts, favorite cities, weather alerts and a daily reminder.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&rt.debug, "debug", "d", false, "Enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		rt.cfg = cfg

		level := cfg.Server.LogLevel
		if rt.debug {
			level = "debug"
		}
		if err := rt.level.UnmarshalText([]byte(level)); err != nil {
			rt.logger.Warn("Unknown log level, keeping info", zap.String("level", level))
		}
		return nil
	}

	rootCmd.AddCommand(
		serveCommand(rt),
		forecastCommand(rt),
		searchCommand(rt),
		favoritesCommand(rt),
	)

	return rootCmd
}
