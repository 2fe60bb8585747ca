package proxyclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"horse.fit/shloka/internal/language"
)

type Health struct {
	Service            string    `json:"service"`
	Time               time.Time `json:"time"`
	ProviderConfigured bool      `json:"provider_configured"`
}

type Languages struct {
	Source  language.Option   `json:"source"`
	Targets []language.Option `json:"targets"`
}

type jsendEnvelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.getJSend(ctx, "/api/v1/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Languages(ctx context.Context) (*Languages, error) {
	var out Languages
	if err := c.getJSend(ctx, "/api/v1/languages", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSend(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return err
	}

	var envelope jsendEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode %s response (HTTP %d): %w", path, status, err)
	}
	if status != http.StatusOK || envelope.Status != "success" {
		message := strings.TrimSpace(envelope.Message)
		if message == "" {
			message = http.StatusText(status)
		}
		return fmt.Errorf("%s failed (HTTP %d): %s", path, status, message)
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}
