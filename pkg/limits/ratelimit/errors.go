package ratelimit

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is matched (via errors.Is) by every error returned
// when a bucket or registry is constructed with unusable parameters.
var ErrInvalidConfiguration = errors.New("invalid rate limit configuration")

// InvalidConfigurationError reports which parameter was rejected.
type InvalidConfigurationError struct {
	// Field is the rejected parameter, e.g. "capacity" or "refill_rate".
	Field string

	// Value is the rejected value.
	Value float64
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid rate limit configuration: %s must be > 0, got %v", e.Field, e.Value)
}

func (e *InvalidConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}
