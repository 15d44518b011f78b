// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for the search client.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff delay. Tests override it to avoid
// real sleeps.
var RetryBaseDelay = 2 * time.Second

// RetryMaxDelay caps a single backoff wait, including waits requested by a
// Retry-After header.
var RetryMaxDelay = 60 * time.Second

const defaultMaxRetries = 5

// RetryPolicy controls DoWithRetry.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero means the default (5).
	MaxRetries int

	// Logger receives one debug record per retry. Nil disables logging.
	Logger *slog.Logger
}

// Retryable reports whether a response status is worth retrying: the
// server is rate limiting (429) or temporarily unavailable (503).
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry executes req and retries retryable statuses with exponential
// backoff starting at RetryBaseDelay. A Retry-After header given in seconds
// replaces the computed delay. Transport errors are returned immediately.
//
// If ctx is cancelled during a wait the function returns ctx.Err(). After
// exhausting retries the last response is returned so the caller can
// inspect its status.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	maxRetries := policy.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if policy.Logger != nil {
			policy.Logger.Debug("retrying request",
				"url", req.URL.Redacted(),
				"status", resp.StatusCode,
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"wait", wait,
			)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// backoff returns the wait before retry number attempt+1.
func backoff(attempt int, retryAfter string) time.Duration {
	wait := RetryBaseDelay << attempt
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		wait = time.Duration(secs) * time.Second
	}
	if wait > RetryMaxDelay {
		wait = RetryMaxDelay
	}
	return wait
}
