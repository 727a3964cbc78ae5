package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mercator-hq/linkgate/pkg/proxy/types"
)

// DefaultMaxBodyBytes is the request body limit used when none is configured.
const DefaultMaxBodyBytes = 64 * 1024

// ParseShortenRequest reads and validates the body of POST /shorten.
//
// The body is limited to maxBytes (DefaultMaxBodyBytes when <= 0). Only the
// shape of the body is checked here; whether the url is a usable link is
// decided by the shortener service.
//
// Example usage:
//
//	req, err := ParseShortenRequest(w, r, cfg.MaxBodyBytes)
//	if err != nil {
//	    status, body := HandleError(err)
//	    WriteErrorResponse(w, status, body)
//	    return
//	}
func ParseShortenRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (*types.ShortenRequest, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &RequestError{
				Status:   http.StatusRequestEntityTooLarge,
				Response: types.NewErrorResponse(types.DetailBodyTooLarge),
			}
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, unprocessable(types.MissingField("url"))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, unprocessable(types.ValidationIssue{
				Loc:  []any{"body"},
				Msg:  "Input should be a valid dictionary or object to extract fields from",
				Type: types.IssueObjectType,
			})
		}
		return nil, unprocessable(types.ValidationIssue{
			Loc:  []any{"body"},
			Msg:  "JSON decode error",
			Type: types.IssueJSONInvalid,
		})
	}

	// A JSON null body decodes to a nil map.
	if fields == nil {
		return nil, unprocessable(types.ValidationIssue{
			Loc:  []any{"body"},
			Msg:  "Input should be a valid dictionary or object to extract fields from",
			Type: types.IssueObjectType,
		})
	}

	raw, ok := fields["url"]
	if !ok {
		return nil, unprocessable(types.MissingField("url"))
	}

	var req types.ShortenRequest
	if err := json.Unmarshal(raw, &req.URL); err != nil || string(raw) == "null" {
		return nil, &RequestError{
			Status:   http.StatusBadRequest,
			Response: types.NewErrorResponse(types.DetailInvalidURL),
		}
	}

	return &req, nil
}

// RequestError is a request that was rejected before reaching the service.
type RequestError struct {
	Status   int
	Response *types.ErrorResponse
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if msg, ok := e.Response.Detail.(string); ok {
		return fmt.Sprintf("request rejected (%d): %s", e.Status, msg)
	}
	return fmt.Sprintf("request rejected (%d): invalid body", e.Status)
}

func unprocessable(issues ...types.ValidationIssue) *RequestError {
	return &RequestError{
		Status:   http.StatusUnprocessableEntity,
		Response: types.NewValidationErrorResponse(issues...),
	}
}
