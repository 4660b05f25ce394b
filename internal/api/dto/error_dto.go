package dto

// ErrorBody carries the machine-readable failure detail for one request.
// Code matches the domain error codes (VALIDATION_FAILED, NOT_FOUND,
// FORBIDDEN, CONFLICT, UNAUTHORIZED, INTERNAL_ERROR).
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
