// Package httpx holds the retry policy and client construction shared by
// the HTTP collaborators.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Defaults for collaborator round trips.
const (
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
	DefaultTimeout  = 30 * time.Second
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code       int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// CheckStatus returns a *StatusError for any non-2xx response.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{Code: resp.StatusCode, RetryAfter: parseRetryAfter(resp)}
}

// Policy is a fixed-backoff retry policy.
type Policy struct {
	Attempts int
	Backoff  time.Duration
}

func (p Policy) normalized() Policy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}
	if p.Backoff < 0 {
		p.Backoff = DefaultBackoff
	}
	return p
}

// maxRetryAfterFactor caps a server's Retry-After at this multiple of the
// policy backoff.
const maxRetryAfterFactor = 3

// Retry runs attempt until it succeeds, returns a non-retryable
// *StatusError, or the attempts run out. Waits between attempts are fixed;
// a longer Retry-After stretches one wait up to maxRetryAfterFactor times
// the backoff.
func (p Policy) Retry(ctx context.Context, logger *zap.Logger, name string, attempt func(ctx context.Context) error) error {
	p = p.normalized()
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for i := 0; i < p.Attempts; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: request canceled: %w", name, err)
		}

		lastErr = attempt(ctx)
		if lastErr == nil {
			return nil
		}

		var status *StatusError
		if errors.As(lastErr, &status) && !status.Retryable() {
			return lastErr
		}

		logger.Warn("retrying request",
			zap.String("collaborator", name),
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", p.Attempts),
			zap.Error(lastErr))

		if i == p.Attempts-1 {
			break
		}

		if err := SleepWithContext(ctx, p.wait(status)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return fmt.Errorf("%s: request failed after %d attempts: %w", name, p.Attempts, lastErr)
}

// wait returns the delay before the next attempt after status, which may be nil.
func (p Policy) wait(status *StatusError) time.Duration {
	if status == nil || status.RetryAfter <= p.Backoff {
		return p.Backoff
	}
	return min(status.RetryAfter, maxRetryAfterFactor*p.Backoff)
}

func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

// SleepWithContext waits for delay or until ctx is done.
func SleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
