package openfoodfacts

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"context"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://world.openfoodfacts.org"

// Config tunes the product database client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RatePerMin  float64
	RateBurst   int
	MaxAttempts int
}

// Client handles communication with the Open Food Facts product database
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	maxAttempts int
	log         zerolog.Logger
}

// NewClient creates a new product database client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RatePerMin == 0 {
		// Open Food Facts asks product-query clients to stay under 100 req/min
		cfg.RatePerMin = 100
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 10
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerMin/60), cfg.RateBurst),
		maxAttempts: cfg.MaxAttempts,
		log:         log.With().Str("component", "openfoodfacts").Logger(),
	}
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "GroceryScanCard/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailure, err)
	}

	return resp, nil
}

// exponentialBackoff returns the sleep before the next retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

// Lookup resolves a barcode against the product database. A miss (unknown
// barcode or empty record) returns domain.ErrProductNotFound; transport and
// upstream failures return domain.ErrLookupFailure after bounded retries.
func (c *Client) Lookup(ctx context.Context, barcode string) (*domain.Product, error) {
	if barcode == "" {
		return nil, domain.ErrInvalidRequest
	}

	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, barcode)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.log.Warn().Err(err).Int("attempt", attempt).Str("barcode", barcode).Msg("request failed")
			lastErr = err
			sleepRetry(ctx, attempt)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrProductNotFound
		}
		if resp.StatusCode != http.StatusOK {
			c.log.Warn().
				Int("attempt", attempt).
				Int("status", resp.StatusCode).
				Str("barcode", barcode).
				Msg("upstream error")
			lastErr = fmt.Errorf("%w: status %d", domain.ErrLookupFailure, resp.StatusCode)
			sleepRetry(ctx, attempt)
			continue
		}

		var wire productResponse
		if err := json.Unmarshal(body, &wire); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		product, err := mapProduct(barcode, &wire)
		if err != nil {
			return nil, err
		}

		c.log.Debug().Str("barcode", barcode).Str("name", product.Name).Msg("product resolved")
		return product, nil
	}

	return nil, lastErr
}

func sleepRetry(ctx context.Context, attempt int) {
	select {
	case <-ctx.Done():
	case <-time.After(exponentialBackoff(attempt)):
	}
}
