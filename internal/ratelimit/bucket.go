package ratelimit

import (
	"sync"
	"time"
)

// Bucket is a token bucket. It starts full and refills at RefillRate
// tokens per second. Refill inside a single call is capped to one
// second's worth of tokens no matter how long the bucket sat idle, so a
// long-dormant client does not get a free burst on its first request
// back.
type Bucket struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64
	tokens     float64
	lastRefill time.Time
}

// NewBucket returns a full bucket. capacity must be >= 0 and refillRate > 0.
func NewBucket(capacity int, refillRate float64, now time.Time) *Bucket {
	return &Bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
	}
}

// Capacity returns the maximum number of tokens the bucket can hold.
func (b *Bucket) Capacity() int { return b.capacity }

// RefillPeriod is the time it takes to refill a single token, used as
// the Retry-After hint on rejected requests.
func (b *Bucket) RefillPeriod() time.Duration {
	return time.Duration(float64(time.Second) / b.refillRate)
}

// Tokens refills the bucket for the elapsed time and returns the number
// of tokens now available. The elapsed time credited per call is clamped
// to one second.
func (b *Bucket) Tokens(now time.Time) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refill(now)
}

// refill must be called with b.mu held.
func (b *Bucket) refill(now time.Time) float64 {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > 1 {
		elapsed = 1
	}
	b.tokens += elapsed * b.refillRate
	if b.tokens > float64(b.capacity) {
		b.tokens = float64(b.capacity)
	}
	b.lastRefill = now
	return b.tokens
}

// Consume refills the bucket and then tries to take amount tokens.
// It reports whether the tokens were taken; on failure the count is left
// unchanged. A non-positive amount always succeeds.
func (b *Bucket) Consume(amount int, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	available := b.refill(now)
	if amount <= 0 {
		return true
	}
	if available >= float64(amount) {
		b.tokens -= float64(amount)
		return true
	}
	return false
}
