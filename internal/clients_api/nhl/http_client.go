package nhl

// Package nhl contains the client for the public NHL stats API and logo asset host
// This file is the transport layer - rate limiting, circuit breaking per host,
// retries and request logging. It knows nothing about goalies or logos.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"goalie-chart/internal/infra/log"
	"goalie-chart/internal/infra/metrics"
	"goalie-chart/internal/infra/retry"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// StatsAPI - goalie summary report of the stats REST API
	StatsAPI = "https://api.nhle.com/stats/rest/en/goalie/summary"
	// LogoAssets - SVG team logos
	LogoAssets = "https://assets.nhle.com/logos/nhl/svg"

	defaultMaxResponseSize = 10 * 1024 * 1024
)

// Config controls how the client reaches both hosts. Zero values fall back to defaults.
type Config struct {
	StatsURL    string
	LogoBaseURL string
	Timeout     time.Duration
	MaxRetries  int
	RateLimit   float64 // requests per second across all hosts
	HTTPClient  *http.Client
	Metrics     *metrics.Recorder
}

// Client talks to the stats API and the logo host.
type Client struct {
	statsURL        string
	logoBaseURL     string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	retry           retry.Options
	maxResponseSize int64
	metrics         *metrics.Recorder

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker // by host
}

func NewClient(cfg Config) *Client {
	if cfg.StatsURL == "" {
		cfg.StatsURL = StatsAPI
	}
	if cfg.LogoBaseURL == "" {
		cfg.LogoBaseURL = LogoAssets
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 20
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 32,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		statsURL:    cfg.StatsURL,
		logoBaseURL: cfg.LogoBaseURL,
		httpClient:  httpClient,
		// burst covers one parallel round of logo downloads
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 32),
		retry: retry.Options{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  300 * time.Millisecond,
			MaxDelay:   5 * time.Second,
			OnRetry: func(attempt int, err error, wait time.Duration) {
				log.LogWarn("Retrying NHL request",
					zap.Int("attempt", attempt),
					zap.Duration("wait", wait),
					zap.Error(err))
			},
		},
		maxResponseSize: defaultMaxResponseSize,
		metrics:         cfg.Metrics,
		breakers:        make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (c *Client) breakerFor(host string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// a 4xx is the caller's problem, not a sign the host is down
		IsSuccessful: func(err error) bool {
			var he *retry.HTTPError
			if errors.As(err, &he) {
				return he.StatusCode < 500 && he.StatusCode != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.LogWarn("Circuit breaker state changed",
				zap.String("host", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	c.breakers[host] = cb
	return cb
}

// Get fetches rawURL and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	requestID := log.GenerateRequestID()
	startTime := time.Now()
	cb := c.breakerFor(u.Host)

	var body []byte
	err = retry.Do(ctx, c.retry, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
		res, err := cb.Execute(func() (interface{}, error) {
			return c.do(ctx, requestID, u, accept)
		})
		if err != nil {
			return err
		}
		body = res.([]byte)
		return nil
	})
	c.metrics.RecordRequest(u.Host, time.Since(startTime), err)
	if err != nil {
		log.RequestLogger(requestID).Error("Request gave up",
			zap.String("url", u.String()),
			zap.Int64("duration_ms", time.Since(startTime).Milliseconds()),
			zap.Error(err))
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, requestID string, u *url.URL, accept string) ([]byte, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, accept)

	log.LogRequest(requestID, req.Method, u.Path, zap.String("url", u.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogResponse(requestID, 0, time.Since(startTime).Milliseconds(), zap.String("endpoint", u.Path), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	duration := time.Since(startTime).Milliseconds()
	if err != nil {
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", u.Path), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", u.Path))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return respBody, nil
}

func setHeaders(req *http.Request, accept string) {
	req.Header.Set("User-Agent", "goalie-chart/1.0")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}
