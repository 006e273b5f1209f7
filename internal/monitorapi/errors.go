// internal/monitorapi/errors.go
package monitorapi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTokenMissing is returned by Login when the response carried neither a
// token nor an access_token field.
var ErrTokenMissing = errors.New("monitorapi: token missing from login response")

// APIError is a request the server understood and rejected: the envelope came
// back with ok:false and a message.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "monitorapi: request failed"
	}
	return "monitorapi: " + e.Message
}

// StatusError is a non-2xx HTTP response without a usable envelope.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("monitorapi: unexpected status %d", e.Code)
}

// IsAuthError reports whether err means the caller's credentials or token are
// no good (bad login, expired/revoked bearer token).
func IsAuthError(err error) bool {
	if errors.Is(err, ErrTokenMissing) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == 401 || se.Code == 403
	}
	return false
}

// noDataVocabulary are server messages that mean "the range is empty", not
// "the request failed". They render as empty charts, never as an error banner.
var noDataVocabulary = []string{
	"no data found for range",
	"no data for range",
	"no records found",
}

// IsNoData reports whether err is a recognized empty-range signal.
func IsNoData(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(ae.Message))
	for _, v := range noDataVocabulary {
		if msg == v || strings.Contains(msg, v) {
			return true
		}
	}
	return false
}
