package shortener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"kinodex/internal/config"
)

const (
	requestTimeout = 5 * time.Second
	maxRetries     = 2
)

// Client calls a GET-style link shortener: API token and target URL as
// query parameters, JSON response with a provider-specific field holding
// the shortened URL. Shortening is cosmetic; Shorten never fails, it
// degrades to the original URL.
type Client struct {
	baseURL    string
	apiKey     string
	field      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a shortener client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.ShortenerURL == "" {
		return nil, fmt.Errorf("shortener URL is required")
	}
	if cfg.ShortenerKey == "" {
		return nil, fmt.Errorf("shortener API key is required")
	}

	return &Client{
		baseURL: cfg.ShortenerURL,
		apiKey:  cfg.ShortenerKey,
		field:   cfg.ShortenerField,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}, nil
}

// Shorten returns the shortened form of rawURL, or rawURL unchanged when
// the provider is unreachable, slow, or returns something unusable.
func (c *Client) Shorten(ctx context.Context, rawURL string) string {
	var shortened string
	operation := func() error {
		result, err := c.shortenOnce(ctx, rawURL)
		if err != nil {
			return err
		}
		shortened = result
		return nil
	}

	// Shortening is cosmetic: a few quick retries, then give up.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = requestTimeout
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		c.logger.WithError(err).WithField("url", rawURL).Warn("Link shortening failed, keeping original URL")
		return rawURL
	}

	return shortened
}

func (c *Client) shortenOnce(ctx context.Context, rawURL string) (string, error) {
	apiURL, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid shortener URL: %w", err)
	}

	params := url.Values{}
	params.Add("api", c.apiKey)
	params.Add("url", rawURL)
	apiURL.RawQuery = params.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, apiURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "kinodex/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("shortener request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("shortener returned status %d", resp.StatusCode)
	}

	// Field name varies by provider; it is configuration, not code.
	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode shortener response: %w", err)
	}

	shortened, ok := payload[c.field].(string)
	if !ok || !strings.HasPrefix(shortened, "http") {
		return "", fmt.Errorf("shortener response field %q missing or not a URL", c.field)
	}

	return shortened, nil
}
