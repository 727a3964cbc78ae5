package types

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	// Detail is either a message string or a []ValidationIssue.
	Detail any `json:"detail"`
}

// ValidationIssue describes one problem with a request body.
type ValidationIssue struct {
	// Loc is the path to the offending value, e.g. ["body", "url"].
	Loc []any `json:"loc"`

	// Msg is a human-readable message.
	Msg string `json:"msg"`

	// Type is a machine-readable category.
	Type string `json:"type"`
}

// Validation issue types.
const (
	// IssueMissing indicates a required field is absent.
	IssueMissing = "missing"

	// IssueJSONInvalid indicates the body is not valid JSON.
	IssueJSONInvalid = "json_invalid"

	// IssueObjectType indicates the body is JSON but not an object.
	IssueObjectType = "model_attributes_type"
)

// Detail messages shared by handlers and error mapping.
const (
	DetailInvalidURL         = "Invalid URL"
	DetailNotFound           = "Short code not found"
	DetailBodyTooLarge       = "Request body too large"
	DetailServiceUnavailable = "Service Unavailable"
	DetailInternal           = "Internal Server Error"
)

// NewErrorResponse creates an error response with a string detail.
func NewErrorResponse(detail string) *ErrorResponse {
	return &ErrorResponse{Detail: detail}
}

// NewValidationErrorResponse creates an error response listing issues.
func NewValidationErrorResponse(issues ...ValidationIssue) *ErrorResponse {
	return &ErrorResponse{Detail: issues}
}

// MissingField returns the issue for an absent body field.
func MissingField(field string) ValidationIssue {
	return ValidationIssue{
		Loc:  []any{"body", field},
		Msg:  "Field required",
		Type: IssueMissing,
	}
}
