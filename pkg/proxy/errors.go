package proxy

import (
	"errors"
	"net/http"

	"mercator-hq/linkgate/pkg/proxy/types"
	"mercator-hq/linkgate/pkg/shortener"
	"mercator-hq/linkgate/pkg/shortener/storage"
)

// HandleError maps err to a status code and response body.
//
// Example usage:
//
//	if err != nil {
//	    status, body := HandleError(err)
//	    WriteErrorResponse(w, status, body)
//	    return
//	}
func HandleError(err error) (int, *types.ErrorResponse) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status, reqErr.Response
	}

	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		return http.StatusBadRequest, types.NewErrorResponse(types.DetailInvalidURL)
	case errors.Is(err, shortener.ErrNotFound):
		return http.StatusNotFound, types.NewErrorResponse(types.DetailNotFound)
	case errors.Is(err, storage.ErrStoreUnavailable),
		errors.Is(err, shortener.ErrCodeSpaceExhausted):
		return http.StatusServiceUnavailable, types.NewErrorResponse(types.DetailServiceUnavailable)
	default:
		return http.StatusInternalServerError, types.NewErrorResponse(types.DetailInternal)
	}
}

// IsClientError reports whether err maps to a 4xx status.
func IsClientError(err error) bool {
	status, _ := HandleError(err)
	return status >= 400 && status < 500
}
