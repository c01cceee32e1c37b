package app

import (
	"context"
	"errors"

	"github.com/playlist-insights/musicclient/clientcommon"
)

// ErrEmptyPlaylist is returned when the playlist could be read but holds no analysable track.
var ErrEmptyPlaylist = errors.New("playlist has no tracks")

const (
	CodeEmptyPlaylist       = "EMPTY_PLAYLIST"
	CodeAccessRestricted    = "ACCESS_RESTRICTED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeTimeout             = "TIMEOUT"
	CodeCanceled            = "CANCELED"
	CodeUnknown             = "UNKNOWN"
)

// ErrorCode classifies an analysis error for callers and metrics.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyPlaylist):
		return CodeEmptyPlaylist
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, clientcommon.ErrAccessRestricted):
		return CodeAccessRestricted
	case errors.Is(err, clientcommon.ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, clientcommon.ErrUpstreamUnavailable), errors.Is(err, clientcommon.ErrExhaustedRetries):
		return CodeUpstreamUnavailable
	default:
		return CodeUnknown
	}
}
