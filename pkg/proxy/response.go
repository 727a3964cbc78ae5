package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"mercator-hq/linkgate/pkg/proxy/types"
)

// WriteJSONResponse writes v as JSON with the given status code.
func WriteJSONResponse(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

// WriteErrorResponse writes an error body with the given status code.
func WriteErrorResponse(w http.ResponseWriter, status int, resp *types.ErrorResponse) error {
	return WriteJSONResponse(w, status, resp)
}

// ShortURL builds the public URL for code.
//
// When baseURL is set it is used as is. Otherwise the URL is derived from
// the request: https when it arrived over TLS, http otherwise, and the
// request's Host header.
//
// Example:
//
//	ShortURL(r, "", "aZ3k9Qp")                    // http://localhost:8000/aZ3k9Qp
//	ShortURL(r, "https://lnk.example", "aZ3k9Qp") // https://lnk.example/aZ3k9Qp
func ShortURL(r *http.Request, baseURL, code string) string {
	if baseURL != "" {
		return strings.TrimRight(baseURL, "/") + "/" + code
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/" + code
}
