package ratelimit

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

// ============================================================================
// Construction Tests
// ============================================================================

func TestNewTokenBucket_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		capacity   float64
		refillRate float64
		field      string
	}{
		{"zero capacity", 0, 1, "capacity"},
		{"negative capacity", -5, 1, "capacity"},
		{"NaN capacity", math.NaN(), 1, "capacity"},
		{"infinite capacity", math.Inf(1), 1, "capacity"},
		{"zero refill", 10, 0, "refill_rate"},
		{"negative refill", 10, -0.5, "refill_rate"},
		{"NaN refill", 10, math.NaN(), "refill_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, err := NewTokenBucket(tt.capacity, tt.refillRate)
			if bucket != nil {
				t.Error("Expected nil bucket on invalid configuration")
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("Expected ErrInvalidConfiguration, got %v", err)
			}

			var cfgErr *InvalidConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected *InvalidConfigurationError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestNewTokenBucket_StartsFull(t *testing.T) {
	bucket, err := NewTokenBucket(50, 10)
	if err != nil {
		t.Fatalf("NewTokenBucket failed: %v", err)
	}

	if bucket.Tokens() != 50 {
		t.Errorf("Expected 50 tokens, got %v", bucket.Tokens())
	}
	if bucket.Capacity() != 50 {
		t.Errorf("Expected capacity 50, got %v", bucket.Capacity())
	}
	if bucket.RefillRate() != 10 {
		t.Errorf("Expected refill rate 10, got %v", bucket.RefillRate())
	}
}

// ============================================================================
// Consume Tests
// ============================================================================

func TestTokenBucket_DrainThenDeny(t *testing.T) {
	clock := NewManualClock()
	bucket, _ := NewTokenBucketWithClock(3, 1, clock)

	for i := 0; i < 3; i++ {
		if !bucket.Consume(1) {
			t.Fatalf("Expected consume %d to succeed", i+1)
		}
	}

	if bucket.Consume(1) {
		t.Error("Expected fourth consume to be denied")
	}
}

func TestTokenBucket_RefillAfterDrain(t *testing.T) {
	clock := NewManualClock()
	bucket, _ := NewTokenBucketWithClock(3, 1, clock)

	for i := 0; i < 3; i++ {
		bucket.Take()
	}

	clock.Advance(1100 * time.Millisecond)

	if !bucket.Take() {
		t.Error("Expected one token to have refilled")
	}
	if bucket.Take() {
		t.Error("Expected only one token to have refilled")
	}
}

func TestTokenBucket_RefillWithSystemClock(t *testing.T) {
	bucket, _ := NewTokenBucket(3, 10) // 10 tokens/sec

	for i := 0; i < 3; i++ {
		bucket.Take()
	}

	// 150ms = 1.5 tokens at 10/sec
	time.Sleep(150 * time.Millisecond)

	if !bucket.Take() {
		t.Error("Expected bucket to have refilled")
	}
}

func TestTokenBucket_AllowsFloorCapacity(t *testing.T) {
	capacities := []float64{1, 2.5, 7, 10.99, 100}

	for _, capacity := range capacities {
		clock := NewManualClock()
		bucket, _ := NewTokenBucketWithClock(capacity, 1, clock)

		allowed := 0
		for bucket.Take() {
			allowed++
			if allowed > int(capacity)+1 {
				break
			}
		}

		if allowed != int(math.Floor(capacity)) {
			t.Errorf("capacity %v: expected %d allowed, got %d", capacity, int(math.Floor(capacity)), allowed)
		}
	}
}

func TestTokenBucket_Saturation(t *testing.T) {
	clock := NewManualClock()
	bucket, _ := NewTokenBucketWithClock(10, 1000, clock)

	bucket.Consume(4)
	clock.Advance(24 * time.Hour)

	if tokens := bucket.Tokens(); tokens != 10 {
		t.Errorf("Expected tokens capped at 10, got %v", tokens)
	}
}

func TestTokenBucket_DenialIsIdempotent(t *testing.T) {
	clock := NewManualClock()
	bucket, _ := NewTokenBucketWithClock(2, 1, clock)

	bucket.Consume(2)

	for i := 0; i < 100; i++ {
		if bucket.Take() {
			t.Fatal("Expected denial on empty bucket")
		}
	}

	if tokens := bucket.Tokens(); tokens != 0 {
		t.Errorf("Expected 0 tokens after repeated denials, got %v", tokens)
	}
}

func TestTokenBucket_DeniedCostLeavesTokens(t *testing.T) {
	clock := NewManualClock()
	bucket, _ := NewTokenBucketWithClock(5, 1, clock)

	if bucket.Consume(6) {
		t.Error("Expected cost above capacity to be denied")
	}
	if tokens := bucket.Tokens(); tokens != 5 {
		t.Errorf("Expected 5 tokens after denial, got %v", tokens)
	}
}

func TestTokenBucket_InvalidCost(t *testing.T) {
	clock := NewManualClock()
	bucket, _ := NewTokenBucketWithClock(5, 1, clock)

	for _, cost := range []float64{0, -1, math.NaN()} {
		if bucket.Consume(cost) {
			t.Errorf("Expected cost %v to be rejected", cost)
		}
	}
	if tokens := bucket.Tokens(); tokens != 5 {
		t.Errorf("Expected 5 tokens, got %v", tokens)
	}
}

func TestTokenBucket_RefillMonotonicity(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{250 * time.Millisecond, 0.5},
		{time.Second, 2},
		{3 * time.Second, 6},
		{10 * time.Second, 10}, // capped
	}

	for _, tt := range tests {
		clock := NewManualClock()
		bucket, _ := NewTokenBucketWithClock(10, 2, clock)
		bucket.Consume(10)

		clock.Advance(tt.elapsed)

		if got := bucket.Tokens(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("after %v: expected %v tokens, got %v", tt.elapsed, tt.want, got)
		}
	}
}

func TestTokenBucket_FractionalCost(t *testing.T) {
	clock := NewManualClock()
	bucket, _ := NewTokenBucketWithClock(1, 1, clock)

	if !bucket.Consume(0.4) || !bucket.Consume(0.4) {
		t.Fatal("Expected two 0.4 consumptions to succeed")
	}
	if bucket.Consume(0.4) {
		t.Error("Expected third 0.4 consumption to be denied")
	}
}

func TestTokenBucket_TimeUntilAvailable(t *testing.T) {
	clock := NewManualClock()
	bucket, _ := NewTokenBucketWithClock(10, 10, clock) // 10 tokens/sec

	if d := bucket.TimeUntilAvailable(1); d != 0 {
		t.Errorf("Expected 0 on full bucket, got %v", d)
	}

	bucket.Consume(10)

	if d := bucket.TimeUntilAvailable(5); d != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", d)
	}

	if d := bucket.TimeUntilAvailable(11); d != time.Duration(math.MaxInt64) {
		t.Errorf("Expected max duration for cost above capacity, got %v", d)
	}
}

func TestTokenBucket_Concurrent(t *testing.T) {
	clock := NewManualClock()
	bucket, _ := NewTokenBucketWithClock(100, 1, clock)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if bucket.Take() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if allowed != 100 {
		t.Errorf("Expected exactly 100 allowed, got %d", allowed)
	}
}

func TestManualClock_IgnoresNegativeAdvance(t *testing.T) {
	clock := NewManualClock()
	clock.Advance(time.Second)
	clock.Advance(-time.Minute)

	if clock.Now() != time.Second {
		t.Errorf("Expected 1s, got %v", clock.Now())
	}
}

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkTokenBucket_Take(b *testing.B) {
	bucket, _ := NewTokenBucket(1000000, 1000000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bucket.Take()
	}
}

func BenchmarkTokenBucket_Concurrent(b *testing.B) {
	bucket, _ := NewTokenBucket(1000000, 1000000)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			bucket.Take()
		}
	})
}
