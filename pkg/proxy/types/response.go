package types

import "time"

// ShortenResponse is returned with 201 Created by POST /shorten.
type ShortenResponse struct {
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`

	// ShortURL is the absolute URL that redirects to OriginalURL.
	ShortURL string `json:"short_url"`
}

// StatsResponse is returned by GET /stats/{code}.
type StatsResponse struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
	ClickCount  int64     `json:"click_count"`
}
