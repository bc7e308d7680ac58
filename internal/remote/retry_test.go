package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aristath/pipeline/internal/product"
)

// flakyClient fails a fixed number of times before succeeding.
type flakyClient struct {
	failures int
	calls    int
	meta     product.Metadata
}

func (c *flakyClient) FetchMetadata(ctx context.Context, path string) (product.Metadata, error) {
	c.calls++
	if c.calls <= c.failures {
		return product.Metadata{}, errors.New("transient storage error")
	}
	return c.meta, nil
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     time.Millisecond,
		MaxInterval:         5 * time.Millisecond,
		MaxElapsedTime:      500 * time.Millisecond,
		Multiplier:          1.5,
		RandomizationFactor: 0,
	}
}

func TestRetryEventuallySucceeds(t *testing.T) {
	inner := &flakyClient{failures: 2, meta: product.Metadata{Exists: true, Hash: "ok"}}
	client := NewRetryingClient("test", inner, fastRetryConfig())

	meta, err := client.FetchMetadata(context.Background(), "data/x.csv")
	if err != nil {
		t.Fatalf("FetchMetadata() error: %v", err)
	}
	if meta.Hash != "ok" {
		t.Errorf("metadata hash = %q, want ok", meta.Hash)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inner.calls)
	}
}

func TestRetryGivesUpAfterMaxElapsed(t *testing.T) {
	inner := &flakyClient{failures: 1 << 30}
	client := NewRetryingClient("test", inner, fastRetryConfig())

	_, err := client.FetchMetadata(context.Background(), "data/x.csv")
	if err == nil {
		t.Fatal("expected failure after retry budget exhausted")
	}
	if inner.calls < 2 {
		t.Errorf("expected multiple attempts, got %d", inner.calls)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyClient{failures: 1 << 30}
	client := NewRetryingClient("test", inner, fastRetryConfig())

	// Exhaust the breaker; 5 consecutive failures trip it.
	_, _ = client.FetchMetadata(context.Background(), "data/x.csv")

	callsBefore := inner.calls
	_, err := client.FetchMetadata(context.Background(), "data/x.csv")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
	if inner.calls != callsBefore {
		t.Errorf("open breaker must not reach the inner client (calls %d -> %d)", callsBefore, inner.calls)
	}
}

func TestCancelledContextIsPermanent(t *testing.T) {
	inner := &flakyClient{failures: 1 << 30}
	client := NewRetryingClient("test", inner, fastRetryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchMetadata(ctx, "data/x.csv")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("cancelled context must not reach the inner client, got %d calls", inner.calls)
	}
}
