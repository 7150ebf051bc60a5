package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_ConsumesExactlyCapacity(t *testing.T) {
	t.Parallel()

	now := time.Now()
	for _, capacity := range []int{1, 2, 5, 100} {
		b := NewBucket(capacity, 1.0, now)
		for i := 0; i < capacity; i++ {
			require.True(t, b.Consume(1, now), "consume %d of %d should succeed", i+1, capacity)
		}
		assert.False(t, b.Consume(1, now), "consume beyond capacity %d should fail", capacity)
	}
}

func TestBucket_ZeroCapacityAlwaysFails(t *testing.T) {
	t.Parallel()

	now := time.Now()
	b := NewBucket(0, 1.0, now)
	assert.False(t, b.Consume(1, now))
	assert.False(t, b.Consume(1, now.Add(time.Hour)))
}

func TestBucket_NonPositiveAmountAlwaysSucceeds(t *testing.T) {
	t.Parallel()

	now := time.Now()
	b := NewBucket(0, 1.0, now)
	assert.True(t, b.Consume(0, now))
	assert.True(t, b.Consume(-3, now))
}

func TestBucket_RefillCappedToOneSecondPerCall(t *testing.T) {
	t.Parallel()

	now := time.Now()
	b := NewBucket(10, 2.0, now)
	require.True(t, b.Consume(10, now))
	assert.Zero(t, b.Tokens(now))

	// An hour idle still only credits one second's worth of tokens.
	got := b.Tokens(now.Add(time.Hour))
	assert.InDelta(t, 2.0, got, 1e-9)
}

func TestBucket_TokensNeverExceedCapacity(t *testing.T) {
	t.Parallel()

	now := time.Now()
	b := NewBucket(3, 100.0, now)
	for i := 1; i <= 10; i++ {
		got := b.Tokens(now.Add(time.Duration(i) * time.Second))
		assert.LessOrEqual(t, got, 3.0)
	}
}

func TestBucket_TokensMonotonicWithoutConsumption(t *testing.T) {
	t.Parallel()

	now := time.Now()
	b := NewBucket(100, 0.5, now)
	require.True(t, b.Consume(100, now))

	prev := 0.0
	for i := 1; i <= 8; i++ {
		got := b.Tokens(now.Add(time.Duration(i) * time.Second))
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

// The scenario from the middleware's documented contract: capacity 2,
// refill rate 1.0, starting full at t=0.
func TestBucket_RefillScenario(t *testing.T) {
	t.Parallel()

	start := time.Unix(1000, 0)
	b := NewBucket(2, 1.0, start)

	require.True(t, b.Consume(1, start))
	require.True(t, b.Consume(1, start))
	assert.Zero(t, b.Tokens(start))

	require.False(t, b.Consume(1, start), "empty bucket with no elapsed time")

	at1 := start.Add(time.Second)
	assert.InDelta(t, 1.0, b.Tokens(at1), 1e-9)
	assert.True(t, b.Consume(1, at1))
}

func TestBucket_FailedConsumeLeavesTokensUnchanged(t *testing.T) {
	t.Parallel()

	now := time.Now()
	b := NewBucket(5, 1.0, now)
	require.True(t, b.Consume(3, now))
	before := b.Tokens(now)
	require.False(t, b.Consume(4, now))
	assert.Equal(t, before, b.Tokens(now))
}

func TestBucket_RefillPeriod(t *testing.T) {
	t.Parallel()

	b := NewBucket(1, 2.0, time.Now())
	assert.Equal(t, 500*time.Millisecond, b.RefillPeriod())
}
