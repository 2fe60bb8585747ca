package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"horse.fit/shloka/internal/cli"
	"horse.fit/shloka/internal/config"
	"horse.fit/shloka/internal/language"
	"horse.fit/shloka/internal/proxyclient"
)

// clientFlags are shared by the commands that talk to a running proxy.
type clientFlags struct {
	envLoader *cli.EnvLoader
	server    *string
	timeout   *time.Duration
}

func addClientFlags(fs *flag.FlagSet, defaultTimeout time.Duration) clientFlags {
	return clientFlags{
		envLoader: cli.AddEnvFlag(fs, ".env", "Path to the .env file"),
		server:    fs.String("server", "", "Proxy base URL (default SHLOKA_SERVER_URL)"),
		timeout:   fs.Duration("timeout", defaultTimeout, "Command timeout"),
	}
}

// connect loads configuration and builds a proxy client. An explicit
// --server wins over SHLOKA_SERVER_URL.
func (f clientFlags) connect() (*config.Config, *proxyclient.Client, error) {
	loadEnvFile(f.envLoader)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	baseURL := cfg.ServerURL
	if trimmed := strings.TrimSpace(*f.server); trimmed != "" {
		baseURL = trimmed
	}

	client, err := proxyclient.New(proxyclient.Options{
		BaseURL: baseURL,
		Timeout: f.timeoutOrDefault(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build proxy client: %w", err)
	}
	return cfg, client, nil
}

func (f clientFlags) timeoutOrDefault() time.Duration {
	if *f.timeout <= 0 {
		return proxyclient.DefaultTimeout
	}
	return *f.timeout
}

func (f clientFlags) commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), f.timeoutOrDefault())
}

func loadEnvFile(envLoader *cli.EnvLoader) {
	if envLoader == nil {
		return
	}
	if _, err := envLoader.Load(); err != nil && !errors.Is(err, cli.ErrNoEnvFile) {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}
}

// parseTargetLang accepts the language codes offered to users.
func parseTargetLang(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return language.DefaultTarget, nil
	}
	code := language.NormalizeCode(raw)
	if !language.IsTarget(code) {
		return "", fmt.Errorf("--lang must be one of %s", strings.Join(language.TargetCodes(), ", "))
	}
	return code, nil
}

// readTextArgs joins positional arguments into one passage.
func readTextArgs(fs *flag.FlagSet) string {
	return strings.Join(fs.Args(), " ")
}
