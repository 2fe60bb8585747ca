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

	"horse.fit/shloka/internal/cli"
	"horse.fit/shloka/internal/config"
	"horse.fit/shloka/internal/httpapi"
	"horse.fit/shloka/internal/logging"
	"horse.fit/shloka/internal/translation"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8090, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 45*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "serve does not accept positional arguments")
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(stderr, "--port must be between 1 and 65535")
		return 2
	}

	loadEnvFile(envLoader)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	provider, err := newProvider(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to build translation provider")
		fmt.Fprintf(stderr, "Failed to build translation provider: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	srv := httpapi.NewServer(provider, logger, httpapi.Options{
		Host:              *host,
		Port:              *port,
		ReadTimeout:       *readTimeout,
		WriteTimeout:      *writeTimeout,
		ShutdownTimeout:   *shutdownTimeout,
		SourceLang:        cfg.SourceLang,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}

// newProvider returns a nil Provider when no key is configured so the proxy
// still boots and answers every translate request with a configuration error.
func newProvider(cfg *config.Config, logger zerolog.Logger) (translation.Provider, error) {
	if !cfg.APIKeyConfigured() {
		logger.Warn().Msg("LDFY_API_KEY is not set; translate requests will be rejected")
		return nil, nil
	}

	provider, err := translation.NewLDFYProvider(translation.LDFYOptions{
		APIKey:     cfg.LDFYAPIKey,
		Endpoint:   cfg.LDFYEndpoint,
		EngineType: cfg.LDFYEngineType,
		SourceLang: cfg.SourceLang,
		Timeout:    cfg.UpstreamTimeout,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return provider, nil
}
