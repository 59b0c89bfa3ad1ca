package backendapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/devilmonastery/chirp/internal/domain/repositories"
)

// APIError is a non-2xx response from the identity provider
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	TraceID    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity provider returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("identity provider returned %d: %s", e.StatusCode, e.Message)
}

// ProviderMessage returns the provider's human-readable explanation
func (e *APIError) ProviderMessage() string {
	return e.Message
}

// Is reports a 404 as repositories.ErrUserNotFound
func (e *APIError) Is(target error) bool {
	return target == repositories.ErrUserNotFound && e.StatusCode == http.StatusNotFound
}

// IsRateLimited checks if the provider throttled the request
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// errorBody is the provider's error envelope
type errorBody struct {
	Errors []struct {
		Message     string `json:"message"`
		LongMessage string `json:"long_message"`
		Code        string `json:"code"`
	} `json:"errors"`
	TraceID string `json:"clerk_trace_id"`
}

// parseAPIError builds an APIError from a response body. Bodies that are not
// the provider's envelope fall back to the HTTP status text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Errors) > 0 {
		first := eb.Errors[0]
		apiErr.Code = first.Code
		apiErr.Message = first.LongMessage
		if apiErr.Message == "" {
			apiErr.Message = first.Message
		}
		apiErr.TraceID = eb.TraceID
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}
