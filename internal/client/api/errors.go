package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is returned for any non-2xx response.
// Detail carries the server's "detail" field when the body had one.
type HTTPError struct {
	Detail     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Detail)
}

// IsUnauthorized reports whether err is an HTTP 401 from the server
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized
}

// Detail returns the server-provided detail of err, or "" if there is none
func Detail(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Detail
	}
	return ""
}

// newHTTPError разбирает тело ошибки. detail бывает строкой или массивом ошибок валидации.
func newHTTPError(status int, body []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		httpErr.Detail = strings.TrimSpace(string(body))
		return httpErr
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		httpErr.Detail = detail
		return httpErr
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			msgs = append(msgs, item.Msg)
		}
		httpErr.Detail = strings.Join(msgs, "; ")
		return httpErr
	}

	httpErr.Detail = string(envelope.Detail)
	return httpErr
}
