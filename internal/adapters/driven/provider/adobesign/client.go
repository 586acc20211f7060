package adobesign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/logger"
)

// apiBasePath is the Acrobat Sign REST API prefix.
const apiBasePath = "/api/rest/v6"

// Client is a thin Acrobat Sign HTTP client with bounded retries and
// rate limiting. The snapshot and reminder adapters share one client.
type Client struct {
	http        *http.Client
	baseURL     string
	cfg         domain.ProviderConfig
	rateLimiter *RateLimiter
}

// NewClient creates an Acrobat Sign client from provider configuration.
func NewClient(cfg domain.ProviderConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("adobesign: base URL is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("adobesign: access token is required")
	}

	defaults := domain.DefaultProviderConfig()
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = defaults.RetryBaseDelay
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.AccessToken},
	)
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = cfg.RequestTimeout

	return &Client{
		http:        hc,
		baseURL:     cfg.BaseURL,
		cfg:         cfg,
		rateLimiter: NewRateLimiter(),
	}, nil
}

// getJSON performs a GET against an API path and decodes the response.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// postJSON performs a POST with a JSON body against an API path.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, path, payload, out)
}

// doJSON runs a request with bounded retries and decodes the response.
//
// Transport failures, 5xx responses and 429 responses are retried with
// exponential backoff up to MaxRetries. Other 4xx responses are never
// retried: the request will not get better. Exhausting retries surfaces
// as ErrProviderUnavailable so callers can fall back to persisted state.
func (c *Client) doJSON(ctx context.Context, method, path string, payload []byte, out any) error {
	url := c.baseURL + apiBasePath + path

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryBaseDelay << (attempt - 1)
			logger.Debug("adobesign: retrying %s %s in %s (attempt %d/%d)",
				method, path, delay, attempt, c.cfg.MaxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		retry, err := c.handleResponse(resp, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: %s %s: %v", domain.ErrProviderUnavailable, method, path, lastErr)
}

// handleResponse decodes a successful response or classifies the
// failure. The bool reports whether the request may be retried.
func (c *Client) handleResponse(resp *http.Response, out any) (bool, error) {
	defer resp.Body.Close()
	c.rateLimiter.UpdateFromResponse(resp)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return false, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("%w: decode response: %v", domain.ErrMalformedSnapshot, err)
		}
		return false, nil

	case resp.StatusCode == http.StatusNotFound:
		return false, fmt.Errorf("%w: %s", domain.ErrAgreementNotFound, apiErrorMessage(resp))

	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		// Auth failures must not be confused with a missing agreement:
		// callers expire documents on ErrAgreementNotFound.
		return false, fmt.Errorf("%w: authentication failed (status %d): %s",
			domain.ErrProviderUnavailable, resp.StatusCode, apiErrorMessage(resp))

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, fmt.Errorf("status %d: %s", resp.StatusCode, apiErrorMessage(resp))

	default:
		return false, fmt.Errorf("%w: unexpected status %d: %s",
			domain.ErrProviderUnavailable, resp.StatusCode, apiErrorMessage(resp))
	}
}

// apiErrorMessage extracts the provider's error message from a failed
// response, falling back to the raw body.
func apiErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return "no response body"
	}

	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		if apiErr.Code != "" {
			return apiErr.Code + ": " + apiErr.Message
		}
		return apiErr.Message
	}
	return string(body)
}
