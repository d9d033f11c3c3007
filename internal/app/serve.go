package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/brandstudio/internal/cli"
	"horse.fit/brandstudio/internal/config"
	"horse.fit/brandstudio/internal/httpapi"
	"horse.fit/brandstudio/internal/logging"
	"horse.fit/brandstudio/internal/schedule"
	"horse.fit/brandstudio/internal/studio"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "", "Host interface to bind (default from BRAND_STUDIO_HTTP_HOST)")
	port := fs.Int("port", 0, "HTTP port (default from BRAND_STUDIO_HTTP_PORT)")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

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
	if *host == "" {
		*host = cfg.HTTPHost
	}
	if *port == 0 {
		*port = cfg.HTTPPort
	}
	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	service := buildService(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	go runScheduledSweeps(ctx, service, cfg, logging.Component(logger, "scheduler"))

	srv := httpapi.NewServer(service, logging.Component(logger, "httpapi"), httpapi.Options{
		Host:            *host,
		Port:            *port,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}

// runScheduledSweeps publishes due auto-mode queue items on the configured
// monitoring interval, so scheduled publishes still happen on idle instances
// that never serve a read request.
func runScheduledSweeps(ctx context.Context, service *studio.Service, cfg *config.Config, logger zerolog.Logger) {
	interval := schedule.IntervalOrDefault(cfg.MonitoringSchedule)
	logger.Info().Dur("interval", interval).Msg("scheduled queue sweep started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if published := service.ProcessScheduledQueue(ctx); published > 0 {
				logger.Info().Int("published", published).Msg("scheduled sweep published items")
			}
		}
	}
}
