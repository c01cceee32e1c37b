package spotify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/playlist-insights/datadog"
	"github.com/playlist-insights/logger"
	"github.com/zmb3/spotify"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const topTracksTimeRange = "medium_term"

// RecentlyPlayed returns the track ids of the user's recent plays, newest first, one entry per play.
// It is auxiliary: whatever was read before a failure is returned along with the error.
func (g *Gateway) RecentlyPlayed(ctx context.Context, limit int) ([]string, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "spotify.recently_played")
	defer span.Finish()

	result, err := g.fetcher.FetchAllPages(ctx, PageRequest{
		Endpoint:    "/me/player/recently-played",
		PageSize:    maxListeningItems,
		MaxItems:    listeningLimit(limit),
		Mode:        CursorPaging,
		RequestType: datadog.RequestTypeRecentlyPlayed,
	})

	ids := make([]string, 0, len(result.Items))

	for _, raw := range result.Items {
		var item spotify.RecentlyPlayedItem

		if decodeErr := json.Unmarshal(raw, &item); decodeErr != nil || item.Track.ID == "" {
			continue
		}

		ids = append(ids, string(item.Track.ID))
	}

	if err != nil {
		logger.Logger.Warningf("Recently played history incomplete, got %d plays - %v", len(ids), err)
		span.Finish(tracer.WithError(err))
		return ids, fmt.Errorf("spotify client: recently played: %w", err)
	}

	return ids, nil
}

// TopTracks returns the ids of the user's top tracks, best ranked first.
func (g *Gateway) TopTracks(ctx context.Context, limit int) ([]string, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "spotify.top_tracks")
	defer span.Finish()

	result, err := g.fetcher.FetchAllPages(ctx, PageRequest{
		Endpoint:    "/me/top/tracks",
		Query:       map[string]string{"time_range": topTracksTimeRange},
		PageSize:    maxListeningItems,
		MaxItems:    listeningLimit(limit),
		RequestType: datadog.RequestTypeTopTracks,
	})

	ids := make([]string, 0, len(result.Items))

	for _, raw := range result.Items {
		var track spotify.FullTrack

		if decodeErr := json.Unmarshal(raw, &track); decodeErr != nil || track.ID == "" {
			continue
		}

		ids = append(ids, string(track.ID))
	}

	if err != nil {
		logger.Logger.Warningf("Top tracks incomplete, got %d tracks - %v", len(ids), err)
		span.Finish(tracer.WithError(err))
		return ids, fmt.Errorf("spotify client: top tracks: %w", err)
	}

	return ids, nil
}

func listeningLimit(limit int) int {
	if limit <= 0 {
		return maxListeningItems
	}

	return limit
}
