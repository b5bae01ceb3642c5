package dto

import "time"

// ErrorResponse is the standardized JSON error body returned by every
// failing endpoint.
//
// Fields:
//   - Message: human-readable summary of what went wrong.
//   - ErrorDetails: optional underlying error text (omitted when empty).
//   - Timestamp: when the error response was produced.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Message      string    `json:"message" example:"invalid from format, expected YYYY-MM-DD"`
	ErrorDetails string    `json:"error,omitempty" example:"parsing time ..."`
	Timestamp    time.Time `json:"timestamp"`
}

// NewErrorResponse builds an ErrorResponse from a message and an optional
// underlying error.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

// Error implements the error interface so an ErrorResponse can travel
// through gin's c.Error() chain.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}
