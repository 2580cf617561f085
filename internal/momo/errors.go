package momo

import (
	"fmt"
)

// APIError is the single error type surfaced for every failure mode of the
// MoMo API layer: transport failures, non-2xx statuses, malformed responses
// and rejected requests. Callers branch on StatusCode or Body rather than on
// error subtypes.
type APIError struct {
	Message    string
	Body       string // raw response body, if one was received
	StatusCode int    // zero when no HTTP response was received
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("momo API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("momo API error: %s", e.Message)
}

// newAPIError builds an APIError without a response body.
func newAPIError(message string) *APIError {
	return &APIError{Message: message}
}
