package cowin

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://cdn-api.co-vin.in"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.93 Safari/537.36"
)

// StatusError is returned for any non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cowin: GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Attempts int           // total tries per call, 1 = no retry
	Backoff  time.Duration // sleep between tries
	Limiter  *rate.Limiter // nil = unlimited
	Logger   *zap.Logger
}

// NewClient builds a client limited to perMinute outbound calls.
// perMinute <= 0 disables the limiter.
func NewClient(baseURL string, timeout time.Duration, attempts int, backoff time.Duration, perMinute int, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var lim *rate.Limiter
	if perMinute > 0 {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 3)
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: timeout},
		Attempts: attempts,
		Backoff:  backoff,
		Limiter:  lim,
		Logger:   logger,
	}
}

// Fetch GETs path with query and decodes the JSON body into out.
// Transport errors, 429 and 5xx are retried up to Attempts times;
// any other non-2xx fails immediately with *StatusError.
func (c *Client) Fetch(ctx context.Context, path string, query url.Values, out any) error {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	u := c.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var last error
	for i := 0; i < attempts; i++ {
		body, err := c.get(ctx, u)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("cowin: decode %s: %w", u, err)
			}
			return nil
		}
		last = err
		if !retryable(ctx, err) || i == attempts-1 {
			break
		}
		c.Logger.Warn("cowin_retry",
			zap.String("url", u),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.Backoff):
		}
	}
	return last
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("cowin_get",
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Float64("latency_ms", time.Since(start).Seconds()*1000),
	)
	if resp.StatusCode/100 != 2 {
		snippet := string(body)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: u, Body: snippet}
	}
	return body, nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	return true
}
