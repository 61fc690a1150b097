package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError carries the HTTP status of a failed protected-API call together
// with the most specific message the server supplied. Message falls back to a
// status-coded generic when the response body held nothing usable.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Unwrap maps the status onto the client taxonomy so callers can use
// errors.Is against the sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case 0:
		return ErrNetwork
	}
	return nil
}

// Status-coded fallback messages, used when the server response carries no
// structured error body.
var fallbackMessages = map[int]string{
	http.StatusBadRequest:          "Invalid data. Check the submitted information.",
	http.StatusUnauthorized:        "Not authorized. Sign in again.",
	http.StatusForbidden:           "No permission for this operation.",
	http.StatusNotFound:            "Resource not found.",
	http.StatusInternalServerError: "Server error. Try again later.",
	0:                              "Could not reach the server. Check your connection.",
}

const genericFallback = "The request could not be completed."

// NewAPIError builds an APIError from a response status and raw body,
// extracting the server message when one is present.
func NewAPIError(status int, body []byte) *APIError {
	msg := ExtractMessage(body)
	if msg == "" {
		msg = FallbackMessage(status)
	}
	return &APIError{Status: status, Message: msg}
}

// FallbackMessage returns the user-facing message for a status code.
func FallbackMessage(status int) string {
	if msg, ok := fallbackMessages[status]; ok {
		return msg
	}
	return genericFallback
}

// ExtractMessage pulls the most specific human-readable message out of a
// structured error body. Servers vary in which key they use; the well-known
// ones are tried in order. Returns "" when nothing usable is found.
func ExtractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "message", "error", "non_field_errors"} {
		raw, ok := parsed[key]
		if !ok {
			continue
		}

		var single string
		if err := json.Unmarshal(raw, &single); err == nil && single != "" {
			return single
		}

		var multiple []string
		if err := json.Unmarshal(raw, &multiple); err == nil && len(multiple) > 0 {
			return strings.Join(multiple, " ")
		}
	}

	return ""
}
