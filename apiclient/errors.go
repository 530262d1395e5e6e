package apiclient

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// APIError is a non-2xx answer from the API. Message is the server's own "error"
// text when it sent one, so callers can show it as is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Error
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	if strings.TrimSpace(apiErr.Message) == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
