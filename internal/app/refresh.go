package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/brandstudio/internal/cli"
	"horse.fit/brandstudio/internal/config"
	"horse.fit/brandstudio/internal/logging"
)

func runRefresh(args []string) int {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Discovery fetch timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	service := buildService(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	items, refreshedAt := service.ForceRefresh(ctx)
	logger.Info().
		Int("candidates", len(items)).
		Time("refreshed_at", refreshedAt).
		Msg("discovery refresh completed")

	for _, item := range items {
		fmt.Printf("%-12s %.3f %-8s %s\n", item.ID, item.Score, item.Source, item.Topic)
	}
	fmt.Printf("ok: %d candidates refreshed\n", len(items))
	return 0
}
