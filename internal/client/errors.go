package client

import (
	"errors"
	"fmt"
	"net/http"

	"csacademy/interview/internal/messages"
)

// status used for failures where no HTTP response was received
const StatusNetworkError = 0

// APIError is returned for every failed backend call. Status is the HTTP
// status code, or StatusNetworkError when the request itself failed.
type APIError struct {
	Status  int
	Message string
	// parsed error body, or the transport error for network failures
	Details interface{}
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == StatusNetworkError {
		return "interview api: " + e.Message
	}
	return fmt.Sprintf("interview api: %s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func newNetworkError(err error) *APIError {
	return &APIError{
		Status:  StatusNetworkError,
		Message: "Network error: " + err.Error(),
		Details: err,
		Err:     err,
	}
}

// IsAPIError reports whether err carries an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsNetworkError(err error) bool {
	apiErr, ok := IsAPIError(err)
	return ok && apiErr.Status == StatusNetworkError
}

// UserMessage maps an error to the text shown in the inline alert. Local
// errors that implement UserFacing supply their own catalog key.
func UserMessage(texts messages.TextProvider, err error) string {
	var uf UserFacing
	if errors.As(err, &uf) {
		return messages.Lookup(texts, messages.GroupErrors, uf.MessageKey())
	}

	apiErr, ok := IsAPIError(err)
	if !ok {
		return messages.Lookup(texts, messages.GroupErrors, messages.Unexpected)
	}

	switch apiErr.Status {
	case http.StatusBadRequest:
		return messages.Lookup(texts, messages.GroupErrors, messages.BadRequest)
	case http.StatusUnauthorized:
		return messages.Lookup(texts, messages.GroupErrors, messages.Unauthorized)
	case http.StatusForbidden:
		return messages.Lookup(texts, messages.GroupErrors, messages.Forbidden)
	case http.StatusNotFound:
		return messages.Lookup(texts, messages.GroupErrors, messages.NotFound)
	case http.StatusInternalServerError:
		return messages.Lookup(texts, messages.GroupErrors, messages.ServerError)
	default:
		return apiErr.Message
	}
}

// UserFacing is implemented by local errors that map to a catalog entry.
type UserFacing interface {
	error
	MessageKey() string
}
