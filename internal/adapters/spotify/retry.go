package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond

	// maxBackoff bounds both exponential delays and Retry-After hints.
	maxBackoff = 10 * time.Second
)

// get issues a GET against the API, replaying it on connection errors, 429
// and 5xx. Every attempt waits on the rate limiter first. Token failures are
// returned at once; the caller reports them as transient auth errors.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("spotify adapter: rate limiter: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("spotify adapter: failed to create request: %w", err)
		}

		// #nosec G107 -- URL built from the configured API base URL
		resp, err := c.httpClient.Do(req)
		hint, retryable := retryHint(resp, err)
		if !retryable {
			return resp, err
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
		}
		if attempt == c.maxRetries {
			break
		}

		delay := hint
		if delay <= 0 {
			delay = c.baseBackoff << (attempt - 1)
		}
		delay = min(delay, maxBackoff)

		c.logger.Warn("spotify adapter: retrying request",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.maxRetries),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)
		if err := sleepWithContext(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("spotify adapter: request failed after %d attempts: %w", c.maxRetries, lastErr)
}

// retryHint reports whether a response is worth replaying and any delay the
// server asked for.
func retryHint(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, false
		}
		return 0, true
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()), true
	}
	return 0, false
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil && when.After(now) {
		return when.Sub(now)
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("spotify adapter: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
