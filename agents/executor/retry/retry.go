/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config configures retries of LLM API calls that fail with rate limit or
// transient server errors.
type Config struct {
	// MaxRetries is the number of retries after the first attempt. 0 disables retrying.
	MaxRetries int `env:"LLM_MAX_RETRIES,default=5"`
	// BaseBackoff is the wait before the first retry; it doubles per attempt.
	BaseBackoff time.Duration `env:"LLM_RETRY_BASE_BACKOFF,default=1s"`
	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration `env:"LLM_RETRY_MAX_BACKOFF,default=60s"`
	// MaxJitter is the upper bound of the random delay added to each backoff.
	MaxJitter time.Duration `env:"LLM_RETRY_MAX_JITTER,default=500ms"`
}

// Validate checks that the retry configuration has valid values.
func (c Config) Validate() error {
	switch {
	case c.MaxRetries < 0:
		return errors.New("max retries cannot be negative")
	case c.BaseBackoff < 0:
		return errors.New("base backoff cannot be negative")
	case c.MaxBackoff < 0:
		return errors.New("max backoff cannot be negative")
	case c.MaxJitter < 0:
		return errors.New("max jitter cannot be negative")
	}
	return nil
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  5,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  60 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// Backoff returns the delay before retry number attempt (zero based),
// excluding jitter.
func (c Config) Backoff(attempt int) time.Duration {
	if attempt > 30 {
		return c.MaxBackoff
	}
	return min(c.BaseBackoff<<attempt, c.MaxBackoff)
}

func (c Config) jitter() time.Duration {
	if c.MaxJitter <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(c.MaxJitter)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}

// OnStatus builds a retry predicate from an accessor that extracts the HTTP
// status of an SDK error. Errors without a status are not retried.
func OnStatus(status func(error) (int, bool), codes ...int) func(error) bool {
	return func(err error) bool {
		code, ok := status(err)
		return ok && slices.Contains(codes, code)
	}
}

// Do runs fn, retrying with exponential backoff and jitter while
// isRetryable reports true for the returned error.
func Do[T any](ctx context.Context, cfg Config, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}
		if !isRetryable(lastErr) {
			return result, lastErr
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		wait := cfg.Backoff(attempt) + cfg.jitter()
		clog.WarnContext(ctx, "Retryable LLM API error",
			"operation", operation,
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"backoff", wait,
			"error", lastErr)

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}
	return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}
