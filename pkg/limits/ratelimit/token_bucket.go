package ratelimit

import (
	"math"
	"sync"
	"time"
)

// TokenBucket implements the token bucket rate limiting algorithm.
//
// The bucket holds a fractional token count between 0 and capacity. Tokens
// accrue continuously at refillRate per second. Each request consumes cost
// tokens; if fewer are available the request is rejected and the count is
// left untouched.
//
// Elapsed time comes from a monotonic Clock, so wall-clock jumps never
// grant or revoke tokens.
//
// # Algorithm
//
//  1. elapsed = now - lastRefill
//  2. tokens = min(capacity, tokens + elapsed*refillRate); lastRefill = now
//  3. If tokens >= cost: tokens -= cost, allow
//  4. Otherwise: reject
//
// # Thread Safety
//
// All methods are safe for concurrent use. Refill, check and subtract happen
// under the bucket's own mutex, so concurrent consumers can never overdraw.
type TokenBucket struct {
	capacity   float64       // Maximum tokens in bucket
	refillRate float64       // Tokens added per second
	tokens     float64       // Current available tokens
	lastRefill time.Duration // Clock reading at last refill
	clock      Clock
	mu         sync.Mutex
}

// NewTokenBucket creates a full bucket using the process monotonic clock.
//
// Parameters:
//   - capacity: Maximum number of tokens in the bucket (burst size)
//   - refillRate: Number of tokens added per second (average rate)
//
// Returns an *InvalidConfigurationError if either value is not a finite
// positive number.
//
// Example:
//
//	// 100 requests per minute, burst up to 100
//	bucket, err := NewTokenBucket(100, 100.0/60.0)
func NewTokenBucket(capacity, refillRate float64) (*TokenBucket, error) {
	return NewTokenBucketWithClock(capacity, refillRate, nil)
}

// NewTokenBucketWithClock is NewTokenBucket with an explicit clock.
// A nil clock selects the system monotonic clock.
func NewTokenBucketWithClock(capacity, refillRate float64, clock Clock) (*TokenBucket, error) {
	if !positiveFinite(capacity) {
		return nil, &InvalidConfigurationError{Field: "capacity", Value: capacity}
	}
	if !positiveFinite(refillRate) {
		return nil, &InvalidConfigurationError{Field: "refill_rate", Value: refillRate}
	}
	if clock == nil {
		clock = defaultClock
	}

	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     capacity, // Start with full bucket
		lastRefill: clock.Now(),
		clock:      clock,
	}, nil
}

// Consume attempts to remove cost tokens from the bucket.
// Returns true if tokens were available and consumed, false otherwise.
// A non-positive or NaN cost is rejected without touching the bucket.
func (tb *TokenBucket) Consume(cost float64) bool {
	if !(cost > 0) {
		return false
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()

	if tb.tokens >= cost {
		tb.tokens -= cost
		return true
	}

	return false
}

// Take consumes a single token.
func (tb *TokenBucket) Take() bool {
	return tb.Consume(1)
}

// Tokens returns the number of tokens currently available after refilling.
func (tb *TokenBucket) Tokens() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return tb.tokens
}

// Capacity returns the maximum bucket capacity.
func (tb *TokenBucket) Capacity() float64 {
	return tb.capacity
}

// RefillRate returns the refill rate in tokens per second.
func (tb *TokenBucket) RefillRate() float64 {
	return tb.refillRate
}

// TimeUntilAvailable returns how long until cost tokens will be available.
// Returns 0 if tokens are immediately available. A cost above capacity can
// never be satisfied and yields the maximum duration.
func (tb *TokenBucket) TimeUntilAvailable(cost float64) time.Duration {
	if cost > tb.capacity {
		return time.Duration(math.MaxInt64)
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()

	if tb.tokens >= cost {
		return 0
	}

	secondsNeeded := (cost - tb.tokens) / tb.refillRate
	return time.Duration(math.Ceil(secondsNeeded * float64(time.Second)))
}

// refillLocked adds tokens based on elapsed time since last refill.
// Caller must hold lock.
func (tb *TokenBucket) refillLocked() {
	now := tb.clock.Now()
	elapsed := now - tb.lastRefill
	if elapsed > 0 {
		tb.tokens = math.Min(tb.capacity, tb.tokens+elapsed.Seconds()*tb.refillRate)
	}
	tb.lastRefill = now
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
