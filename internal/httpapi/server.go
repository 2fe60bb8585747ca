package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/shloka/internal/language"
	"horse.fit/shloka/internal/translation"
)

const (
	routeTranslate     = "/translate"
	routeTranslateWord = "/translate-word"
)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// SourceLang is sent upstream when a request omits sourceLang.
	SourceLang string

	// RateLimitRequests per RateLimitWindow per client IP on the translate
	// routes. Zero disables limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type Server struct {
	provider translation.Provider
	logger   zerolog.Logger
	opts     Options
	limiter  *clientRateLimiter
}

// NewServer builds the proxy. A nil provider is allowed: every translate
// request is then answered with the "API key not configured" error.
func NewServer(provider translation.Provider, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 60 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	s := &Server{
		provider: provider,
		logger:   logger,
		opts: Options{
			Host:              host,
			Port:              port,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			ShutdownTimeout:   shutdownTimeout,
			SourceLang:        language.SourceOrDefault(opts.SourceLang),
			RateLimitRequests: opts.RateLimitRequests,
			RateLimitWindow:   opts.RateLimitWindow,
		},
	}
	if opts.RateLimitRequests > 0 && opts.RateLimitWindow > 0 {
		s.limiter = newClientRateLimiter(opts.RateLimitRequests, opts.RateLimitWindow)
	}
	return s
}

// Handler assembles the echo instance with middleware and routes.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
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
	e.Use(permissiveCORS())
	e.Use(middleware.RequestID())

	var proxyMiddleware []echo.MiddlewareFunc
	if s.limiter != nil {
		proxyMiddleware = append(proxyMiddleware, s.limiter.middleware())
	}
	e.POST(routeTranslate, s.handleTranslate, proxyMiddleware...)
	e.POST(routeTranslateWord, s.handleTranslateWord, proxyMiddleware...)

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/languages", s.handleLanguages)

	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	if s.limiter != nil {
		go s.limiter.sweep(ctx, 5*time.Minute, 10*time.Minute)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().
		Str("addr", addr).
		Bool("provider_configured", s.provider != nil).
		Msg("shloka proxy started")
	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("shloka proxy stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if v, ok := he.Message.(string); ok && strings.TrimSpace(v) != "" {
			message = v
		} else if text := http.StatusText(status); text != "" {
			message = text
		}
	} else if err != nil {
		message = err.Error()
	}

	path := c.Request().URL.Path
	switch {
	case path == routeTranslate || path == routeTranslateWord:
		kind := translation.KindUpstream
		if status < 500 {
			kind = translation.KindValidation
		}
		_ = c.JSON(status, proxyErrorBody{Error: message, Kind: kind})
	case strings.HasPrefix(path, "/api/"):
		if status >= 500 {
			_ = internalError(c, "Internal server error")
			return
		}
		_ = fail(c, status, message)
	default:
		_ = c.String(status, message)
	}
}
