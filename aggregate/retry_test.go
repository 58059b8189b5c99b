package aggregate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaseworks/rentledger/aggregate"
	"github.com/leaseworks/rentledger/eventstore"
)

func Test_RetryOnConflict_Success_NoRetries(t *testing.T) {
	// arrange
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return nil
	}

	// act
	err := aggregate.RetryOnConflict(ctx, fn)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, callCount)
}

func Test_RetryOnConflict_RetriesConcurrencyConflicts(t *testing.T) {
	// arrange
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return eventstore.ErrConcurrencyConflict
		}
		return nil
	}

	// act
	err := aggregate.RetryOnConflict(ctx, fn, aggregate.WithBaseDelay(time.Millisecond))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, callCount)
}

func Test_RetryOnConflict_FailsFast_OnNonConflictError(t *testing.T) {
	// arrange
	ctx := context.Background()
	callCount := 0
	boom := errors.New("database unreachable")

	fn := func(_ context.Context) error {
		callCount++
		return boom
	}

	// act
	err := aggregate.RetryOnConflict(ctx, fn, aggregate.WithBaseDelay(time.Millisecond))

	// assert - only conflicts are worth retrying
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, callCount)
}

func Test_RetryOnConflict_ReturnsConflict_WhenAttemptsExhausted(t *testing.T) {
	// arrange
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return eventstore.ErrConcurrencyConflict
	}

	// act
	err := aggregate.RetryOnConflict(ctx, fn,
		aggregate.WithMaxAttempts(3),
		aggregate.WithBaseDelay(time.Millisecond),
		aggregate.WithJitterFactor(0.1),
	)

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.Equal(t, 3, callCount)
}

func Test_RetryOnConflict_StopsWhenContextIsCanceled(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		cancel() // cancel while the retry loop would back off
		return eventstore.ErrConcurrencyConflict
	}

	// act
	err := aggregate.RetryOnConflict(ctx, fn, aggregate.WithBaseDelay(50*time.Millisecond))

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, callCount)
}

func Test_RetryOnConflict_RejectsInvalidOptions(t *testing.T) {
	// arrange
	ctx := context.Background()
	fn := func(_ context.Context) error { return nil }

	// act + assert
	assert.ErrorIs(t,
		aggregate.RetryOnConflict(ctx, fn, aggregate.WithMaxAttempts(0)),
		aggregate.ErrInvalidMaxAttempts)
	assert.ErrorIs(t,
		aggregate.RetryOnConflict(ctx, fn, aggregate.WithBaseDelay(-time.Second)),
		aggregate.ErrNegativeBaseDelay)
	assert.ErrorIs(t,
		aggregate.RetryOnConflict(ctx, fn, aggregate.WithJitterFactor(1.5)),
		aggregate.ErrInvalidJitterFactor)
}
