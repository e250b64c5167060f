// Package api is the HTTP client for the vendaa backend.
//
// Every call is prefixed with the configured base URL and the fixed versioned
// prefix. Non-2xx responses become *Error values carrying the HTTP status and
// a human-readable message; 204 responses resolve without decoding a body.
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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/log"
	"github.com/vendaa/vendaa/internal/telemetry"
	"github.com/vendaa/vendaa/internal/version"
)

// Prefix is the versioned path prefix applied to every request.
const Prefix = "/api/v1"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// TokenSource supplies the bearer token for authenticated requests.
// An empty string means no token is stored.
type TokenSource interface {
	AccessToken() string
}

// Observer receives per-request measurements.
type Observer interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
	ObserveFailure(route, kind string)
}

// Client is the vendaa backend API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	logger     *log.Logger
	observer   optionalObserver
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource sets where authenticated requests read their bearer token.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithRateLimit caps outgoing requests to rps per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the client logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver sets the request observer (usually *metrics.Metrics).
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = optionalObserver{o} }
}

// NewClient creates a new API client for baseURL (scheme and host, no prefix).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api")
	return c
}

// BaseURL returns the base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping sends an unauthenticated GET to the API root. Any HTTP response means
// the backend is reachable; a non-2xx one is returned as *Error.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/", Route: "/"}, nil)
	return err
}

// Request describes one backend call.
type Request struct {
	Method string
	// Path is relative to the versioned prefix, e.g. "/auth/me/".
	Path string
	// Route is the templated path used for spans and metrics.
	// Defaults to Path.
	Route string
	Query url.Values
	Body  any
	// Header values override the defaults set by the client.
	Header http.Header
	// Authenticated attaches the bearer token from the TokenSource.
	Authenticated bool
}

// Response is the outcome of a successful call.
type Response struct {
	Status    int
	NoContent bool
}

// URL returns the absolute URL for r.
func (c *Client) URL(r Request) string {
	u := c.baseURL + Prefix + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

// Do performs r and decodes a successful body into out (when out is non-nil).
func (c *Client) Do(ctx context.Context, r Request, out any) (*Response, error) {
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	route := r.Route
	if route == "" {
		route = r.Path
	}

	ctx, span := telemetry.StartAPISpan(ctx, r.Method, route)
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.observer.failure(route, "rate_limit")
			wrapped := errors.Wrap(errors.ErrCodeAPIRateLimited, "request not sent", err)
			telemetry.RecordError(span, wrapped)
			return nil, wrapped
		}
	}

	req, err := c.newRequest(ctx, r)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.failure(route, "network")
		c.logger.WithError(err).Debug("request failed", "method", r.Method, "route", route)
		wrapped := errors.Wrap(errors.ErrCodeAPIRequest, fmt.Sprintf("%s %s failed", r.Method, route), err).
			WithSuggestion("Check your network connection and the configured environment")
		telemetry.RecordError(span, wrapped)
		return nil, wrapped
	}
	defer resp.Body.Close()

	c.observer.request(r.Method, route, resp.StatusCode, time.Since(start))
	c.logger.Debug("request completed",
		"method", r.Method,
		"route", route,
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &Error{Status: resp.StatusCode, Message: extractMessage(body)}
		telemetry.RecordError(span, apiErr)
		return nil, apiErr
	}

	res := &Response{Status: resp.StatusCode}
	if resp.StatusCode == http.StatusNoContent {
		res.NoContent = true
		telemetry.RecordSuccess(span, attribute.Int("http.status_code", resp.StatusCode))
		return res, nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.observer.failure(route, "decode")
			wrapped := errors.Wrap(errors.ErrCodeAPIDecode, fmt.Sprintf("malformed response from %s %s", r.Method, route), err)
			telemetry.RecordError(span, wrapped)
			return nil, wrapped
		}
	}

	telemetry.RecordSuccess(span, attribute.Int("http.status_code", resp.StatusCode))
	return res, nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.URL(r), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.Body != nil || r.Authenticated {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Authenticated && c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for key, values := range r.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return req, nil
}

// do is a small helper for endpoint methods.
func (c *Client) do(ctx context.Context, method, path, route string, query url.Values, body, out any) error {
	_, err := c.Do(ctx, Request{
		Method:        method,
		Path:          path,
		Route:         route,
		Query:         query,
		Body:          body,
		Authenticated: true,
	}, out)
	return err
}

// optionalObserver forwards to an Observer when one is set.
type optionalObserver struct{ Observer }

func (o optionalObserver) request(method, route string, status int, d time.Duration) {
	if o.Observer != nil {
		o.Observer.ObserveRequest(method, route, status, d)
	}
}

func (o optionalObserver) failure(route, kind string) {
	if o.Observer != nil {
		o.Observer.ObserveFailure(route, kind)
	}
}
