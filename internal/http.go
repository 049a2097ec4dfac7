package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer token attached to every API request.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

// tokenInvalidator is implemented by token sources that cache, such as *Authenticator.
type tokenInvalidator interface {
	Invalidate()
}

// Client is the authenticated transport shared by every model. It is safe for concurrent use.
type Client struct {
	client    *http.Client
	BaseURL   *url.URL
	UserAgent string
	tokens    TokenSource
	logger    *slog.Logger

	limiter        *rate.Limiter
	mu             sync.Mutex
	forceWaitUntil time.Time
}

// RateLimitConfig controls how requests are throttled before reaching Reddit.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	SecondsPerMinute         = 60.0
	ParseFloatBitSize        = 64

	// maxLoggedBody bounds the response preview written to debug logs.
	maxLoggedBody = 512
	// maxErrorBody bounds the body quoted in transport errors.
	maxErrorBody = 256
)

// NewClient returns the transport. A nil httpClient falls back to http.DefaultClient and a nil
// logger discards output.
func NewClient(httpClient *http.Client, tokens TokenSource, baseURL, userAgent string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tokens == nil {
		return nil, &pkgerrs.ConfigError{Field: "tokens", Message: "token source cannot be nil"}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}

	return &Client{
		client:    httpClient,
		BaseURL:   parsedURL,
		UserAgent: userAgent,
		tokens:    tokens,
		logger:    logger,
		limiter:   buildLimiter(*rateCfg),
	}, nil
}

// NewRequest creates an API request. path is resolved relative to BaseURL. Non-nil params are
// form-encoded into the body for POST/PUT/PATCH and into the query string otherwise.
// body and params are mutually exclusive for body-carrying methods; params win.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader, params url.Values) (*http.Request, error) {
	u, err := c.BaseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "build request", URL: path, Err: err}
	}

	formBody := false
	if len(params) > 0 {
		switch method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			body = strings.NewReader(params.Encode())
			formBody = true
		default:
			q := u.Query()
			for key, values := range params {
				for _, v := range values {
					q.Add(key, v)
				}
			}
			u.RawQuery = q.Encode()
		}
	}

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "build request", URL: u.String(), Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.UserAgent)
	if formBody {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return req, nil
}

// DoRaw executes req and returns the response body. A non-2xx status is reported as
// *pkgerrs.APIError when the body carries a Reddit error envelope and as *pkgerrs.RequestError
// otherwise. Nothing is retried.
func (c *Client) DoRaw(req *http.Request) ([]byte, error) {
	op := req.Method + " " + req.URL.Path

	if err := c.waitForRateLimit(req.Context()); err != nil {
		return nil, &pkgerrs.RequestError{Operation: op, URL: req.URL.String(), Message: "rate limit wait aborted", Err: err}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: op, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	c.applyRateHeaders(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: op, URL: req.URL.String(), StatusCode: resp.StatusCode, Message: "failed to read response body", Err: err}
	}

	c.logger.Debug("reddit api response",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"response_preview", preview(body, maxLoggedBody),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		// The request still fails; only the next one re-authenticates.
		if inv, ok := c.tokens.(tokenInvalidator); ok {
			inv.Invalidate()
			c.logger.Warn("access token rejected, cached token dropped", "path", req.URL.Path)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if details := types.ParseErrorEnvelope(body); len(details) > 0 {
			return nil, &pkgerrs.APIError{
				StatusCode: resp.StatusCode,
				ErrorCode:  details[0].Code,
				Message:    details[0].Message,
				Field:      details[0].Field,
				Details:    details,
			}
		}
		return nil, &pkgerrs.RequestError{
			Operation:  op,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: %s", http.StatusText(resp.StatusCode), preview(body, maxErrorBody)),
		}
	}

	return body, nil
}

func preview(body []byte, limit int) string {
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if err := c.waitForForcedDelay(ctx); err != nil {
		return err
	}

	if c.limiter == nil {
		return nil
	}

	return c.limiter.Wait(ctx)
}

func (c *Client) waitForForcedDelay(ctx context.Context) error {
	for {
		c.mu.Lock()
		waitUntil := c.forceWaitUntil
		c.mu.Unlock()

		if waitUntil.IsZero() {
			return nil
		}

		now := time.Now()
		if !now.Before(waitUntil) {
			c.clearForcedDelay(waitUntil)
			return nil
		}

		timer := time.NewTimer(waitUntil.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			c.clearForcedDelay(waitUntil)
		}
	}
}

func (c *Client) clearForcedDelay(previous time.Time) {
	c.mu.Lock()
	if previous.Equal(c.forceWaitUntil) {
		c.forceWaitUntil = time.Time{}
	}
	c.mu.Unlock()
}

// applyRateHeaders defers the next request when Reddit signals the window is exhausted.
func (c *Client) applyRateHeaders(resp *http.Response) {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.ParseFloat(retryAfter, ParseFloatBitSize); err == nil && seconds > 0 {
			c.deferRequests(time.Duration(seconds * float64(time.Second)))
		}
	}

	remainingHeader := resp.Header.Get("X-Ratelimit-Remaining")
	resetHeader := resp.Header.Get("X-Ratelimit-Reset")
	if remainingHeader == "" || resetHeader == "" {
		return
	}

	remaining, errRemaining := strconv.ParseFloat(remainingHeader, ParseFloatBitSize)
	resetSeconds, errReset := strconv.ParseFloat(resetHeader, ParseFloatBitSize)
	if errRemaining != nil || errReset != nil || resetSeconds <= 0 {
		return
	}

	if remaining <= 1 {
		c.logger.Debug("rate limit window exhausted", "reset_seconds", resetSeconds)
		c.deferRequests(time.Duration(resetSeconds * float64(time.Second)))
	}
}

func (c *Client) deferRequests(d time.Duration) {
	if d <= 0 {
		return
	}

	until := time.Now().Add(d)

	c.mu.Lock()
	if until.After(c.forceWaitUntil) {
		c.forceWaitUntil = until
	}
	c.mu.Unlock()
}
