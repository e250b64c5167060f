package api

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// GenericMessage is used when an error body carries no recognizable message.
const GenericMessage = "Dang! Something went wrong, I wish I could explain, but I don't want to bore you with the details, check back later I promise to have it fixed."

// messageRules are gjson paths tried in order against an error body.
// The first one resolving to a non-empty string wins.
var messageRules = []string{
	"detail",
	"non_field_errors.0",
	"email.0",
	"error.0",
}

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// StatusCode returns the HTTP status of the response.
func (e *Error) StatusCode() int {
	return e.Status
}

// extractMessage never fails: empty or non-JSON bodies yield GenericMessage.
func extractMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return GenericMessage
	}
	for _, path := range messageRules {
		r := gjson.GetBytes(body, path)
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return GenericMessage
}

// StatusOf returns the HTTP status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Status, true
	}
	return 0, false
}

// IsUnauthorized reports whether err is an authentication failure (401).
func IsUnauthorized(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == http.StatusNotFound
}

// Message returns the human-readable message of an API error, or err.Error()
// for any other error.
func Message(err error) string {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
