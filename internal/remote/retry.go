package remote

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/aristath/pipeline/internal/product"
)

// RetryConfig configures exponential backoff retry behavior.
type RetryConfig struct {
	InitialInterval     time.Duration // Initial retry interval (default 100ms)
	MaxInterval         time.Duration // Maximum retry interval (default 10s)
	MaxElapsedTime      time.Duration // Maximum total retry time (default 2min)
	Multiplier          float64       // Backoff multiplier (default 2.0)
	RandomizationFactor float64       // Jitter factor (default 0.5)
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         10 * time.Second,
		MaxElapsedTime:      2 * time.Minute,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// RetryingClient decorates a product.Client with exponential backoff retry
// and a circuit breaker. Remote storage errors are frequently transient, so
// fetches are retried until the policy is exhausted; a misbehaving backend
// trips the breaker and fails fast instead of hammering storage from up to
// 64 sync workers at once.
type RetryingClient struct {
	inner   product.Client
	breaker *gobreaker.CircuitBreaker
	cfg     RetryConfig
}

// NewRetryingClient wraps inner. name identifies the breaker in logs,
// typically the bucket name.
func NewRetryingClient(name string, inner product.Client, cfg RetryConfig) *RetryingClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3, // Allow 3 test requests in half-open state
		Interval:    0, // Don't clear counts automatically
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %q: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			// User cancellation is not a storage failure.
			if err == nil {
				return true
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return false
		},
	})

	return &RetryingClient{inner: inner, breaker: cb, cfg: cfg}
}

// FetchMetadata fetches through the breaker, retrying transient failures
// with exponential backoff.
func (c *RetryingClient) FetchMetadata(ctx context.Context, path string) (product.Metadata, error) {
	var meta product.Metadata

	operation := func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.inner.FetchMetadata(ctx, path)
		})

		if err != nil {
			// Circuit is open - don't retry.
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}

		meta = result.(product.Metadata)
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.InitialInterval
	policy.MaxInterval = c.cfg.MaxInterval
	policy.MaxElapsedTime = c.cfg.MaxElapsedTime
	policy.Multiplier = c.cfg.Multiplier
	policy.RandomizationFactor = c.cfg.RandomizationFactor

	err := backoff.Retry(operation, backoff.WithContext(policy, ctx))
	return meta, err
}
