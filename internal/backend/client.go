package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"latexify/internal/config"
	"latexify/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Operation families used for rate limiting and circuit breaking
const (
	OpGenerate  = "generate"
	OpUpdate    = "update"
	OpCompile   = "compile"
	OpEnhance   = "enhance"
	OpUpload    = "upload"
	OpAnalyze   = "analyze"
	OpTemplates = "templates"
	OpProfile   = "profile"
)

// Client is the typed HTTP client for the generation backend. All AI work
// (LaTeX generation, compilation, text extraction, ATS scoring) happens on
// the other side of this client; it only shapes requests and maps failures.
type Client struct {
	baseURL string
	apiKey  string

	http     *http.Client
	limiter  *LimiterManager
	breakers *breakerSet
	certs    *certReloader

	timeouts map[string]time.Duration

	logger *errors.Logger
}

// ClientOption customizes a Client at construction time
type ClientOption func(*Client)

// WithRateLimitCallback registers a callback invoked whenever an outbound
// request had to wait for the rate limiter
func WithRateLimitCallback(fn func(operation string)) ClientOption {
	return func(c *Client) {
		if c.limiter != nil {
			c.limiter.onWait = fn
		}
	}
}

// WithCertReloadCallback registers a callback invoked after a successful
// client certificate reload
func WithCertReloadCallback(fn func()) ClientOption {
	return func(c *Client) {
		if c.certs != nil {
			c.certs.onReload = fn
		}
	}
}

// New creates a backend client from configuration
func New(cfg *config.Config, logger *errors.Logger, opts ...ClientOption) (*Client, error) {
	tlsConfig, certs, err := buildTLSConfig(cfg.Backend.TLS, logger)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Failed to build backend TLS configuration", err)
	}

	transport := http.DefaultTransport
	if tlsConfig != nil {
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.TLSClientConfig = tlsConfig
		transport = base
	}

	client := &Client{
		baseURL: cfg.Backend.BaseURL,
		apiKey:  cfg.Backend.APIKey,
		http: &http.Client{
			// Per-operation deadlines come from request contexts; the
			// client-level timeout is the global ceiling.
			Timeout:   cfg.Backend.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		certs:    certs,
		breakers: newBreakerSet(cfg, logger),
		timeouts: map[string]time.Duration{
			OpGenerate: *cfg.GetGenerateConfig().Timeout,
			OpUpdate:   *cfg.GetUpdateConfig().Timeout,
			OpCompile:  *cfg.GetCompileConfig().Timeout,
			OpAnalyze:  *cfg.GetAnalyzeConfig().Timeout,
		},
		logger: logger,
	}

	if cfg.Backend.RateLimit.Enabled {
		client.limiter = NewLimiterManager(
			cfg.Backend.RateLimit.RequestsPerMin,
			cfg.Backend.RateLimit.BurstCapacity,
			logger,
		)
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases client resources (certificate watcher)
func (c *Client) Close() {
	if c.certs != nil {
		c.certs.Close()
	}
}

// BreakerStats exposes circuit breaker state per operation family
func (c *Client) BreakerStats() map[string]any {
	return c.breakers.Stats()
}

// operationContext applies the per-operation timeout when one is configured
func (c *Client) operationContext(ctx context.Context, operation string) (context.Context, context.CancelFunc) {
	if timeout, ok := c.timeouts[operation]; ok && timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// do performs a single backend request and returns the raw response body.
// Non-2xx statuses and transport failures are mapped onto the error taxonomy.
func (c *Client) do(ctx context.Context, operation, method, path string, body io.Reader, contentType string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, operation); err != nil {
			return nil, errors.NewNetworkError(errors.ErrCodeNetworkFailure,
				"Request cancelled while waiting for rate limiter", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeUnexpected,
			fmt.Sprintf("Failed to build request for %s", path), err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkFailure,
			fmt.Sprintf("Request to %s failed", path), err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && c.logger != nil {
			c.logger.Warn("Failed to close response body", "path", path, "error", cerr)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkFailure,
			fmt.Sprintf("Failed to read response from %s", path), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(path, resp.StatusCode, data)
	}

	return data, nil
}

// doWithBreaker routes a request through the operation's circuit breaker
func (c *Client) doWithBreaker(ctx context.Context, operation, method, path string, body []byte, contentType string) ([]byte, error) {
	opCtx, cancel := c.operationContext(ctx, operation)
	defer cancel()

	return c.breakers.Execute(operation, func() ([]byte, error) {
		return c.do(opCtx, operation, method, path, bytes.NewReader(body), contentType)
	})
}

// statusError converts a non-2xx response into a backend error, preferring
// the backend-provided message when the body carries one
func (c *Client) statusError(path string, status int, body []byte) *errors.AppError {
	message := fmt.Sprintf("Backend returned status %d for %s", status, path)

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			message = payload.Error
		} else if payload.Message != "" {
			message = payload.Message
		}
	}

	return errors.NewBackendError(errors.ErrCodeBackendRequest, message, nil).
		WithContext("path", path).
		WithContext("status", status)
}

// postJSON marshals a request body, posts it, and decodes the typed response
func postJSON[T any](ctx context.Context, c *Client, operation, path string, request any) (T, error) {
	var result T

	body, err := json.Marshal(request)
	if err != nil {
		return result, errors.NewInternalError(errors.ErrCodeUnexpected,
			fmt.Sprintf("Failed to encode request for %s", path), err)
	}

	data, err := c.doWithBreaker(ctx, operation, http.MethodPost, path, body, "application/json")
	if err != nil {
		return result, err
	}

	return decodeJSON[T](data, path)
}

// getJSON performs a GET outside the circuit breakers and decodes the response
func getJSON[T any](ctx context.Context, c *Client, operation, path string) (T, error) {
	var result T

	data, err := c.do(ctx, operation, http.MethodGet, path, nil, "")
	if err != nil {
		return result, err
	}

	return decodeJSON[T](data, path)
}

// decodeJSON unmarshals a response body, mapping failures onto the
// malformed-response error code
func decodeJSON[T any](data []byte, path string) (T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return result, errors.NewBackendError(errors.ErrCodeBackendResponse,
			fmt.Sprintf("Malformed response from %s", path), err)
	}
	return result, nil
}
