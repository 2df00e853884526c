package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured means the provider lacks a key, model or endpoint.
	ErrNotConfigured = errors.New("provider is not configured")
	// ErrEmptyResponse means the provider answered without any content.
	ErrEmptyResponse = errors.New("provider returned empty response")
	// ErrMalformedResponse means the content could not be turned into a record.
	ErrMalformedResponse = errors.New("provider returned malformed response")
	// ErrUnauthorized covers rejected or insufficient credentials.
	ErrUnauthorized = errors.New("provider rejected credentials")
	// ErrRateLimited means the provider throttled the request.
	ErrRateLimited = errors.New("provider rate limit exceeded")
	// ErrUnavailable means the provider or the requested model cannot serve requests.
	ErrUnavailable = errors.New("provider unavailable")
)

// StatusError maps an HTTP status returned by a provider onto the sentinel
// errors above. Unknown statuses are returned as plain errors.
func StatusError(provider string, status int, detail string) error {
	var base error
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		base = ErrUnauthorized
	case status == http.StatusTooManyRequests:
		base = ErrRateLimited
	case status == http.StatusNotFound, status >= http.StatusInternalServerError:
		base = ErrUnavailable
	default:
		return fmt.Errorf("%s api call failed with status code %d: %s", provider, status, detail)
	}
	return fmt.Errorf("%s api status %d: %w: %s", provider, status, base, detail)
}
