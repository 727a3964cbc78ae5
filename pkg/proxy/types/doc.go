// Package types defines the JSON request and response bodies of the
// shortener API.
//
// # Core Types
//
// Request types:
//   - ShortenRequest: body of POST /shorten
//
// Response types:
//   - ShortenResponse: 201 body of POST /shorten
//   - StatsResponse: body of GET /stats/{code}
//   - ErrorResponse: every error body
//
// # Error Format
//
// Errors carry a single "detail" field. It is a string for most errors:
//
//	{"detail": "Short code not found"}
//
// and a list of issues when the request body fails validation:
//
//	{
//	  "detail": [
//	    {"loc": ["body", "url"], "msg": "Field required", "type": "missing"}
//	  ]
//	}
package types
