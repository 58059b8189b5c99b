package aggregate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/leaseworks/rentledger/eventstore"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3

	retryDelayMetric       = "aggregate_retry_delay_seconds"
	retriesMetric          = "aggregate_retries_total"
	retriesExhaustedMetric = "aggregate_retries_exhausted_total"
)

var (
	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")

	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithRetryMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")
)

// RetryableFunc is one attempt of a reload-and-retry cycle: load the
// aggregate, run the command, save. It must start from a fresh load on every
// call, otherwise retrying a concurrency conflict can never succeed.
type RetryableFunc func(ctx context.Context) error

// retryConfig holds configuration for the exponential backoff retry loop.
type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector eventstore.MetricsCollector
	operation        string
}

// RetryOption configures RetryOnConflict using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, baseDelay*8, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter factor added to each backoff delay to
// prevent thundering herd effects. Valid range: 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryMetrics sets the metrics collector for retry instrumentation,
// labeling metrics with the given operation name.
func WithRetryMetrics(collector eventstore.MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}

// RetryOnConflict runs fn, retrying with exponential backoff and jitter as
// long as it fails with eventstore.ErrConcurrencyConflict. All other errors
// fail fast, including context cancellation and deadline timeouts: retrying
// timeouts during overload only creates cascade failures.
//
// Default schedule: immediate, 10ms, 20ms, 40ms, 80ms, 160ms (plus jitter),
// roughly 300ms worst case over six attempts.
//
// The store itself never retries; this helper makes the reload-and-retry
// cycle explicit at the call site.
func RetryOnConflict(ctx context.Context, fn RetryableFunc, options ...RetryOption) error {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return err
		}
	}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			config.recordDelay(ctx, attempt, backoffDelay)

			select {
			case <-time.After(backoffDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !errors.Is(lastErr, eventstore.ErrConcurrencyConflict) {
			return lastErr
		}

		config.recordRetry(ctx, attempt)
	}

	config.recordExhausted(ctx)

	return lastErr
}

func (config *retryConfig) recordDelay(ctx context.Context, attempt int, delay time.Duration) {
	if config.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		"operation": config.operation,
		"attempt":   fmt.Sprintf("%d", attempt),
	}

	if contextual, ok := config.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, retryDelayMetric, delay, labels)
		return
	}

	config.metricsCollector.RecordDuration(retryDelayMetric, delay, labels)
}

func (config *retryConfig) recordRetry(ctx context.Context, attempt int) {
	if config.metricsCollector == nil || attempt >= config.maxAttempts-1 {
		return
	}

	labels := map[string]string{
		"operation": config.operation,
		"attempt":   fmt.Sprintf("%d", attempt+1),
	}

	if contextual, ok := config.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, retriesMetric, labels)
		return
	}

	config.metricsCollector.IncrementCounter(retriesMetric, labels)
}

func (config *retryConfig) recordExhausted(ctx context.Context) {
	if config.metricsCollector == nil {
		return
	}

	labels := map[string]string{"operation": config.operation}

	if contextual, ok := config.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, retriesExhaustedMetric, labels)
		return
	}

	config.metricsCollector.IncrementCounter(retriesExhaustedMetric, labels)
}
