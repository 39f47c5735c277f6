package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPConfig configures the HTTP source. Zero values get defaults: 30s
// timeout, 3 retries, 200ms initial backoff.
type HTTPConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration

	// Client is injectable for tests; nil means a fresh http.Client with
	// the configured timeout.
	Client *http.Client
}

// HTTP fetches the input from a URL, retrying transient failures with
// exponential backoff. Only 2xx responses count as success; 5xx responses
// and transport errors are retried, 4xx are not.
type HTTP struct {
	url     string
	client  *http.Client
	retries int
	backoff time.Duration

	// sleep is injectable so tests stay fast and deterministic.
	sleep func(time.Duration)
}

// NewHTTP constructs an HTTP source, applying defaults for zero config.
func NewHTTP(url string, cfg HTTPConfig) *HTTP {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTP{
		url:     url,
		client:  client,
		retries: cfg.MaxRetries,
		backoff: cfg.InitialBackoff,
		sleep:   time.Sleep,
	}
}

// Open performs the GET, retrying as configured. The caller owns the
// returned body.
func (h *HTTP) Open(ctx context.Context) (io.ReadCloser, error) {
	backoff := h.backoff
	var lastErr error
	for attempt := 0; attempt <= h.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			h.sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", h.url, err)
		}
		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp.Body, nil
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("fetch %s: %s", h.url, resp.Status)
			continue
		default:
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: %s", h.url, resp.Status)
		}
	}
	return nil, fmt.Errorf("fetch %s: giving up after %d attempts: %w", h.url, h.retries+1, lastErr)
}
