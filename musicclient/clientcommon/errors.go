package clientcommon

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrRateLimited = errors.New("upstream rate limit hit")
var ErrAccessRestricted = errors.New("upstream access restricted")
var ErrUpstreamUnavailable = errors.New("upstream unavailable")
var ErrExhaustedRetries = errors.New("retries exhausted")

// UpstreamError is a non-successful answer from the catalog API.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream %s answered %d", e.Endpoint, e.StatusCode)
	}

	return fmt.Sprintf("upstream %s answered %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrAccessRestricted:
		return e.IsCapabilityAbsent()
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUpstreamUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	}

	return false
}

// IsCapabilityAbsent is true for statuses meaning the credential cannot reach the resource at all.
func (e *UpstreamError) IsCapabilityAbsent() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		e.StatusCode == http.StatusForbidden ||
		e.StatusCode == http.StatusNotFound
}
