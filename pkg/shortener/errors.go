package shortener

import (
	"errors"

	"mercator-hq/linkgate/pkg/shortener/storage"
)

var (
	// ErrInvalidURL is returned by Shorten for empty, relative or non-HTTP URLs.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrNotFound is returned when a code has no live record.
	ErrNotFound = storage.ErrNotFound

	// ErrCodeSpaceExhausted is returned when every generated code collided.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique short code")
)
