package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"horse.fit/brandstudio/internal/cli"
	"horse.fit/brandstudio/internal/config"
	"horse.fit/brandstudio/internal/logging"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")

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
	payload := service.HealthPayload()

	logger.Info().
		Str("state_file", cfg.StateFile).
		Str("candidates_file", cfg.CandidatesFile).
		Str("accounts_file", cfg.AccountsFile).
		Msg("health check passed")
	fmt.Printf("ok: %s %s\n", payload["module"], payload["status"])
	return 0
}
