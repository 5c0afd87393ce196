package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_EnforcesInterval(t *testing.T) {
	limiter := New(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Acquire(ctx))

	start := time.Now()
	require.NoError(t, limiter.Acquire(ctx))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond,
		"second acquire should wait out the interval")
}

func TestAcquire_ZeroIntervalDoesNotBlock(t *testing.T) {
	limiter := New(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Acquire(ctx))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAcquire_ContextCancellation(t *testing.T) {
	limiter := New(time.Minute)
	require.NoError(t, limiter.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
