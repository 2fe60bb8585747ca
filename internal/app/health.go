package app

import (
	"errors"
	"flag"
	"fmt"
	"time"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(stderr)

	client := addClientFlags(fs, 10*time.Second)
	requireProvider := fs.Bool("require-provider", false, "Fail when the proxy has no provider key")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "health does not accept positional arguments")
		return 2
	}

	_, proxy, err := client.connect()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, cancel := client.commandContext()
	defer cancel()

	health, err := proxy.Health(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Health check failed: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "%s ok at %s (provider_configured=%t)\n", health.Service, health.Time.UTC().Format(time.RFC3339), health.ProviderConfigured)
	if *requireProvider && !health.ProviderConfigured {
		fmt.Fprintln(stderr, "LDFY_API_KEY is not configured on the proxy")
		return 1
	}
	return 0
}
