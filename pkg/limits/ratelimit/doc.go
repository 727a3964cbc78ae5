// Package ratelimit provides per-client token bucket rate limiting.
//
// # Overview
//
// The package has two building blocks:
//
//   - TokenBucket: a single-key limiter holding a fractional token count that
//     refills continuously at a fixed rate up to a fixed capacity
//   - Registry: a map from client key (usually an IP address) to TokenBucket,
//     creating buckets lazily on first use
//
// # Token Bucket
//
// A bucket starts full, so a new client may burst up to capacity. Every
// call to Consume first refills the bucket from the elapsed monotonic time,
// then subtracts the cost if enough tokens are available:
//
//	bucket, err := ratelimit.NewTokenBucket(3, 1) // 3 capacity, 1 token/sec
//	if err != nil {
//	    // capacity or refill rate was not positive
//	}
//	if bucket.Take() {
//	    // Request allowed
//	} else {
//	    // Rate limit exceeded
//	}
//
// # Registry
//
// The registry is configured with a request budget per window. The derived
// refill rate is RateLimit / WindowSeconds tokens per second:
//
//	registry, err := ratelimit.NewRegistry(ratelimit.RegistryConfig{
//	    RateLimit:     100,
//	    WindowSeconds: 60,
//	})
//	if !registry.Allow("203.0.113.7") {
//	    // reject with 429
//	}
//
// # Thread Safety
//
// The registry lock only guards bucket lookup and creation. Each bucket has
// its own lock, so unrelated clients never contend on a shared lock. No
// operation holds more than one lock at a time.
package ratelimit
