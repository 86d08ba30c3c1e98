package crmsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNoToken is returned when an authenticated call has no token to send.
var ErrNoToken = errors.New("crmsdk: no access token")

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
	Code    string

	// UserCount is set when a group delete is refused because it has members.
	UserCount int

	// RetryAfter is set on RATE_LIMITED responses.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crmsdk: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns an error body into an *APIError. Bodies that are
// not in the {error, code} shape fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		apiErr.Code = errResp.Code
		apiErr.Message = errResp.Error
		if errResp.UserCount != nil {
			apiErr.UserCount = *errResp.UserCount
		}
		if errResp.RetryAfterMS != nil {
			apiErr.RetryAfter = time.Duration(*errResp.RetryAfterMS) * time.Millisecond
		}
		return apiErr
	}

	apiErr.Code = "HTTP_ERROR"
	apiErr.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	return apiErr
}
