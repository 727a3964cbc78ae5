package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig controls the circuit breaker wrapped around remote stores.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker open.
	// Default: 5
	ConsecutiveFailures uint32

	// OpenTimeout is how long the breaker stays open before letting a
	// probe request through.
	// Default: 30 seconds
	OpenTimeout time.Duration

	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration
}

type breaker struct {
	cb *gobreaker.CircuitBreaker
}

func newBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *breaker {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	st := gobreaker.Settings{
		Name:     name,
		Interval: cfg.Interval,
		Timeout:  cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// Lookups of missing codes and duplicate codes are answers, not
		// backend failures.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrCodeExists)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &breaker{cb: gobreaker.NewCircuitBreaker(st)}
}

// do runs fn through the breaker. Rejections while open are reported as
// ErrStoreUnavailable.
func (b *breaker) do(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

func (b *breaker) state() string {
	return b.cb.State().String()
}
