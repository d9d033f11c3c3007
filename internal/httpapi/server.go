package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/brandstudio/internal/studio"
)

const (
	defaultCandidateLimit = 20
	maxCandidateLimit     = 200
	defaultAuditLimit     = 100
	maxAuditLimit         = 1000
)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	service *studio.Service
	logger  zerolog.Logger
	opts    Options
}

func NewServer(service *studio.Service, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8098
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		service: service,
		logger:  logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

// buildRouter wires middleware and routes; Start and the tests share it.
func (s *Server) buildRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Authenticated-User", "X-User", "X-Admin-User"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1/brand-studio")
	api.GET("/health", s.handleHealth)

	api.GET("/sources/candidates", s.handleCandidates)
	api.POST("/sources/refresh", s.handleRefresh)

	api.POST("/drafts/generate", s.handleGenerateDraft)
	api.POST("/drafts/:draft_id/queue", s.handleQueueDraft)

	api.GET("/queue", s.handleQueueList)
	api.POST("/queue/:item_id/publish", s.handlePublish)
	api.POST("/queue/process", s.handleProcessQueue)

	api.GET("/audit", s.handleAudit)

	api.GET("/config", s.handleConfigGet)
	api.PUT("/config", s.handleConfigUpdate)

	api.GET("/strategies", s.handleStrategiesList)
	api.POST("/strategies", s.handleStrategyCreate)
	api.PUT("/strategies/:strategy_id", s.handleStrategyUpdate)
	api.DELETE("/strategies/:strategy_id", s.handleStrategyDelete)
	api.POST("/strategies/:strategy_id/activate", s.handleStrategyActivate)

	api.GET("/channels", s.handleChannels)
	api.GET("/channels/:channel/accounts", s.handleAccountsList)
	api.POST("/channels/:channel/accounts", s.handleAccountCreate)
	api.PUT("/channels/:channel/accounts/:account_id", s.handleAccountUpdate)
	api.DELETE("/channels/:channel/accounts/:account_id", s.handleAccountDelete)
	api.POST("/channels/:channel/accounts/:account_id/activate", s.handleAccountActivate)
	api.POST("/channels/:channel/accounts/:account_id/test", s.handleAccountTest)

	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.service == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.buildRouter()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("brand studio server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("brand studio server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

// writeServiceError maps the service's typed errors onto HTTP statuses:
// missing entities are 404, unmet preconditions are 400, and conflicts with
// durable state (already published, last strategy) are 409.
func (s *Server) writeServiceError(c echo.Context, err error) error {
	var notFound *studio.NotFoundError
	if errors.As(err, &notFound) {
		return failNotFound(c, notFound.Error())
	}
	if studio.IsConflict(err) {
		switch studio.ConflictKind(err) {
		case studio.KindAlreadyPublished, studio.KindLastStrategy:
			return failConflict(c, err.Error())
		default:
			return fail(c, http.StatusBadRequest, err.Error(), nil)
		}
	}
	s.logger.Error().Err(err).Msg("unhandled service error")
	return internalError(c, "Internal server error")
}

// actorFrom resolves the acting user from forwarded identity headers.
func actorFrom(c echo.Context) string {
	for _, header := range []string{"X-Authenticated-User", "X-User", "X-Admin-User"} {
		if value := strings.TrimSpace(c.Request().Header.Get(header)); value != "" {
			return value
		}
	}
	return "unknown"
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}

func parseScore(raw string) (*float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, fmt.Errorf("must be a number")
	}
	if value < 0 || value > 1 {
		return nil, fmt.Errorf("must be between 0 and 1")
	}
	return &value, nil
}
