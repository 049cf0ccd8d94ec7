// Package related resolves "related tracks" for the active track from the
// source-specific backends.
package related

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/llehouerou/upnext/internal/logging"
)

var (
	// ErrUpstreamRequest is returned when a backend call fails or answers non-2xx.
	ErrUpstreamRequest = errors.New("upstream request failed")
	// ErrUpstreamMalformed is returned when a backend answers with an unexpected body.
	ErrUpstreamMalformed = errors.New("upstream response malformed")
)

const (
	defaultUserAgent = "upnext/1.0"
	maxBodyBytes     = 4 << 20
)

// ClientOptions configures a backend client.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration // 0 keeps http.Client's default (no timeout)
	UserAgent  string
	RateLimit  float64 // requests per second, <= 0 means unlimited
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client performs rate-limited JSON GET requests against one backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	log        *log.Logger
}

// NewClient creates a backend client.
func NewClient(opts ClientOptions) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent:  ua,
		limiter:    rate.NewLimiter(limit, 1),
		log:        logging.Component(opts.Logger, "http"),
	}
}

// getJSON fetches baseURL+path and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: backend not configured", ErrUpstreamRequest)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	reqID := uuid.NewString()
	logger := c.log.With("request_id", reqID)

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %w", ErrUpstreamRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrUpstreamRequest, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: http request: %w", ErrUpstreamRequest, err)
	}
	defer resp.Body.Close()

	logger.Debug("upstream response", "url", reqURL, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: unexpected status: %s", ErrUpstreamRequest, resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrUpstreamMalformed, err)
	}

	return nil
}
