package types

// ShortenRequest is the body of POST /shorten.
type ShortenRequest struct {
	// URL is the link to shorten. It must be an absolute http or https URL.
	URL string `json:"url"`
}
