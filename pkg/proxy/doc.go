// Package proxy provides the request parsing, response writing and error
// mapping shared by the shortener HTTP handlers.
//
// # Architecture
//
//   - proxy: parse request bodies, write JSON, map errors to status codes
//   - handlers: one handler per endpoint (shorten, redirect, stats)
//   - middleware: cross-cutting concerns (recovery, request ID, logging,
//     metrics, rate limiting)
//   - types: JSON request and response bodies
//
// # Error Mapping
//
// HandleError turns any error returned by a handler's dependencies into a
// status code and a {"detail": ...} body:
//
//	*RequestError                   -> its own status and body (400, 413, 422)
//	shortener.ErrInvalidURL         -> 400 "Invalid URL"
//	shortener.ErrNotFound           -> 404 "Short code not found"
//	storage.ErrStoreUnavailable     -> 503
//	shortener.ErrCodeSpaceExhausted -> 503
//	anything else                   -> 500 "Internal Server Error"
//
// # Request Validation
//
// POST /shorten distinguishes a body that cannot be processed (422, with a
// list of issues) from a url that is present but unusable (400):
//
//	not JSON                 -> 422 json_invalid
//	JSON but not an object   -> 422 model_attributes_type
//	no "url" field           -> 422 missing
//	"url" not a string       -> 400 Invalid URL
//	body over the size limit -> 413
package proxy
