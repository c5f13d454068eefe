// Package api is the HTTP client for the blog API: identity, content persistence, reads and interactions.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/cache"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/config"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
)

var apiLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

// Client talks to one API base URL. Authentication is the HTTP client's concern:
// hand it the session-aware client for protected calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string

	categories *cache.Cache[string, []model.Category]
}

type Option func(*Client)

func WithCategoriesTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.categories = cache.NewTTLCache[string, []model.Category](ttl)
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.UserAgent = ua
	}
}

func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
		UserAgent:  config.AppName,
		categories: cache.NewTTLCache[string, []model.Category](5 * time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption adjusts an outgoing request.
type RequestOption func(*http.Request)

func WithIdempotencyKey(key string) RequestOption {
	return func(r *http.Request) {
		if key != "" {
			r.Header.Set(config.HIdempotencyKey, key)
		}
	}
}

// WithBearer sets an explicit token, for calls made before a session exists.
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(config.HAuthorization, config.BearerPrefix+token)
	}
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("API error (%d): %s - %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, result interface{}, opts ...RequestOption) error {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	fullURL, err := url.JoinPath(c.BaseURL, endpoint)
	if err != nil {
		return fmt.Errorf("failed to join URL path: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(config.HAccept, config.CTypeJSON)
	if reqBody != nil {
		req.Header.Set(config.HCType, config.CTypeJSON)
	}
	if c.UserAgent != "" {
		req.Header.Set(config.HUserAgent, c.UserAgent)
	}
	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		apiLogger.Debug().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("Request failed")
		return fmt.Errorf("request failed: %w", err)
	}

	apiLogger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Request")

	return handleResponse(resp, result)
}

// handleResponse closes the body.
func handleResponse(resp *http.Response, result interface{}) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiError := &APIError{
			StatusCode: resp.StatusCode,
		}

		var errorResp map[string]interface{}
		if json.Unmarshal(body, &errorResp) == nil {
			for _, k := range []string{"error", "message", "detail"} {
				if msg, ok := errorResp[k].(string); ok {
					apiError.Message = msg
					break
				}
			}
			if details, ok := errorResp["details"].(string); ok {
				apiError.Details = details
			}
		}

		if apiError.Message == "" {
			apiError.Message = http.StatusText(resp.StatusCode)
		}

		return apiError
	}

	if result != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
