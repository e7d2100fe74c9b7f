// Package fetch issues single HTTP GETs with retry and backoff using a
// Colly collector as the transport.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/newsroomlab/pressharvest/internal/metrics"
)

// Response is the raw result of a fetch.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether the status indicates a transient server-side
// condition. Client errors (4xx other than 429) fail fast so callers can act
// on them, e.g. the author not-found policy and the pagination sentinel.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// Config controls client behavior.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Client fetches URLs sequentially, retrying transient failures with
// exponential backoff.
type Client struct {
	cfg    Config
	base   *colly.Collector
	policy *RetryPolicy
	sleep  func(context.Context, time.Duration) error
	logger *zap.Logger
}

// NewClient builds a Client around a fresh Colly collector.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Synchronous is colly's default; the Async option in colly v2.1.0
	// ignores its argument and always enables async mode.
	c := colly.NewCollector()
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	// Error-status bodies still matter: the pagination sentinel arrives on a
	// 400 and the author policy inspects 404/401 responses.
	c.ParseHTTPErrorResponse = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	c.SetRequestTimeout(timeout)

	metrics.Init()

	return &Client{
		cfg:    cfg,
		base:   c,
		policy: NewRetryPolicy(cfg.MaxRetries, cfg.BaseDelay, cfg.MaxDelay),
		sleep:  sleepContext,
		logger: logger,
	}
}

// Get fetches url, retrying per the configured policy. On a non-2xx terminal
// status the response is returned alongside a *StatusError so callers can
// still inspect the body.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.do(ctx, url)
		if err == nil && resp.StatusCode < http.StatusBadRequest {
			metrics.ObserveFetch(resp.StatusCode)
			return resp, nil
		}
		if err == nil {
			metrics.ObserveFetch(resp.StatusCode)
			err = &StatusError{URL: url, StatusCode: resp.StatusCode}
			if !c.policy.ShouldRetry(err, attempt) {
				return resp, err
			}
		} else if !c.policy.ShouldRetry(err, attempt) {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}

		delay := c.policy.Backoff(attempt)
		c.logger.Warn("fetch attempt failed; backing off",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		metrics.IncFetchRetry()
		if serr := c.sleep(ctx, delay); serr != nil {
			return nil, serr
		}
	}
}

// do performs one GET via a cloned collector.
func (c *Client) do(ctx context.Context, url string) (*Response, error) {
	collector := c.base.Clone()

	var (
		result   *Response
		fetchErr error
	)
	start := time.Now()

	collector.OnResponse(func(r *colly.Response) {
		result = &Response{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, err
		}
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if result == nil {
		return nil, fmt.Errorf("no response received for %s", url)
	}
	return result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
