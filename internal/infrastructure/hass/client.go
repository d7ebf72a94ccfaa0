package hass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
	"github.com/rs/zerolog"
)

// Config holds connection settings for the host platform API.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the host platform's REST state and service bus.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        zerolog.Logger
}

// NewClient creates a host bus client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		log:     log.With().Str("component", "hass").Logger(),
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CallService invokes a host service action with the given payload.
func (c *Client) CallService(ctx context.Context, serviceDomain, action string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	path := fmt.Sprintf("/api/services/%s/%s", serviceDomain, action)
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.log.Warn().
			Str("service", serviceDomain+"."+action).
			Int("status", resp.StatusCode).
			Msg("service call rejected")
		return fmt.Errorf("service call %s.%s: status %d, body: %s",
			serviceDomain, action, resp.StatusCode, string(respBody))
	}

	c.log.Debug().Str("service", serviceDomain+"."+action).Msg("service call accepted")
	return nil
}

// stateResponse is the wire shape of a host entity state.
type stateResponse struct {
	EntityID   string `json:"entity_id"`
	State      string `json:"state"`
	Attributes struct {
		Items []domain.ListEntry `json:"items"`
	} `json:"attributes"`
}

// GetState reads the state snapshot of a list entity. An unknown entity
// yields nil without an error so callers fall back to an empty list.
func (c *Client) GetState(ctx context.Context, entityID string) (*domain.EntityState, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/states/"+entityID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("state fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("state fetch for %s: status %d", entityID, resp.StatusCode)
	}

	var wire stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}

	return &domain.EntityState{
		EntityID: wire.EntityID,
		Items:    wire.Attributes.Items,
	}, nil
}

// serviceEntry is one element of the host's service registry listing.
type serviceEntry struct {
	Domain   string                     `json:"domain"`
	Services map[string]json.RawMessage `json:"services"`
}

// Services returns the live service registry. The registry can change while
// the process runs, so callers re-read it before every service call.
func (c *Client) Services(ctx context.Context) (domain.ServiceRegistry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/services", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("service registry fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service registry fetch: status %d", resp.StatusCode)
	}

	var entries []serviceEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode service registry: %w", err)
	}

	registry := make(domain.ServiceRegistry, len(entries))
	for _, entry := range entries {
		actions := make(map[string]bool, len(entry.Services))
		for action := range entry.Services {
			actions[action] = true
		}
		registry[entry.Domain] = actions
	}

	return registry, nil
}
