package clientcommon

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestUpstreamErrorClassification(t *testing.T) {
	tests := []struct {
		status     int
		restricted bool
		rateLimit  bool
		unavailable bool
	}{
		{http.StatusBadRequest, false, false, false},
		{http.StatusUnauthorized, true, false, false},
		{http.StatusForbidden, true, false, false},
		{http.StatusNotFound, true, false, false},
		{http.StatusTooManyRequests, false, true, false},
		{http.StatusInternalServerError, false, false, true},
		{http.StatusServiceUnavailable, false, false, true},
	}

	for _, test := range tests {
		// wrapped the way the clients return it
		err := fmt.Errorf("reading: %w", &UpstreamError{Endpoint: "/artists", StatusCode: test.status})

		if got := errors.Is(err, ErrAccessRestricted); got != test.restricted {
			t.Errorf("%d: access restricted expected %t", test.status, test.restricted)
		}
		if got := errors.Is(err, ErrRateLimited); got != test.rateLimit {
			t.Errorf("%d: rate limited expected %t", test.status, test.rateLimit)
		}
		if got := errors.Is(err, ErrUpstreamUnavailable); got != test.unavailable {
			t.Errorf("%d: unavailable expected %t", test.status, test.unavailable)
		}
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	err := &UpstreamError{Endpoint: "/playlists/x", StatusCode: 404, Message: "Not found."}

	if err.Error() != "upstream /playlists/x answered 404: Not found." {
		t.Errorf("unexpected message %q", err.Error())
	}
}
