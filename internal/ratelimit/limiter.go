package ratelimit

import (
	"sync"
	"time"
)

// Scope selects how buckets are keyed.
type Scope string

const (
	// ScopeGlobal shares a single bucket across every client.
	ScopeGlobal Scope = "global"
	// ScopePerClient keeps an independent bucket per client key.
	ScopePerClient Scope = "perclient"
)

type entry struct {
	bucket   *Bucket
	lastSeen time.Time
}

// Limiter hands out admission decisions keyed by client. Buckets are
// created lazily on the first request from a new key and swept out after
// sitting idle for idleTTL. The map mutex guards only lookup/insert and
// the sweep; token arithmetic happens under each bucket's own lock.
type Limiter struct {
	capacity   int
	refillRate float64
	scope      Scope
	idleTTL    time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	global  *Bucket

	stop chan struct{}
	once sync.Once
}

// NewLimiter builds a limiter. idleTTL <= 0 disables eviction.
func NewLimiter(capacity int, refillRate float64, scope Scope, idleTTL time.Duration) *Limiter {
	l := &Limiter{
		capacity:   capacity,
		refillRate: refillRate,
		scope:      scope,
		idleTTL:    idleTTL,
		entries:    make(map[string]*entry),
		stop:       make(chan struct{}),
	}
	if scope == ScopeGlobal {
		l.global = NewBucket(capacity, refillRate, time.Now())
	}
	return l
}

// RefillPeriod is the Retry-After hint for rejected requests.
func (l *Limiter) RefillPeriod() time.Duration {
	return time.Duration(float64(time.Second) / l.refillRate)
}

// Allow consumes one token for the given client key and reports whether
// the request may proceed.
func (l *Limiter) Allow(key string, now time.Time) bool {
	return l.bucketFor(key, now).Consume(1, now)
}

func (l *Limiter) bucketFor(key string, now time.Time) *Bucket {
	if l.scope == ScopeGlobal {
		return l.global
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{bucket: NewBucket(l.capacity, l.refillRate, now)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.bucket
}

// Len reports the number of tracked client keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Sweep drops buckets that have not been touched since now-idleTTL and
// returns how many were removed.
func (l *Limiter) Sweep(now time.Time) int {
	if l.idleTTL <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) > l.idleTTL {
			delete(l.entries, k)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until Stop is called.
func (l *Limiter) StartSweeper(interval time.Duration) {
	if l.idleTTL <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				l.Sweep(t)
			case <-l.stop:
				return
			}
		}
	}()
}

// Stop terminates the background sweeper. Safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
