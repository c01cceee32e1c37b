package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/playlist-insights/appmodels"
	"github.com/playlist-insights/datadog"
	"github.com/playlist-insights/logger"
	"github.com/zmb3/spotify"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const maxArtistsPerApiCall = 50

type artistsResponse struct {
	Artists []*spotify.FullArtist `json:"artists"`
}

// ArtistsByIds fetches the artists once per distinct id, by chunks of maxArtistsPerApiCall.
// A failed chunk is skipped: the artists of the other chunks are returned together with the error.
func (g *Gateway) ArtistsByIds(ctx context.Context, ids []string) (map[string]appmodels.Artist, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "spotify.artists")
	defer span.Finish()

	artistIds := uniqueIds(ids)
	artists := make(map[string]appmodels.Artist, len(artistIds))

	logger.Logger.Infof("Fetching %d artists (%d ids requested)", len(artistIds), len(ids))

	var errs []error

	// Send the artists query by batch of maxArtistsPerApiCall, as we are limited on the number of artists
	// we can query at once
	for i, part := range chunks(artistIds, maxArtistsPerApiCall) {
		if i > 0 {
			if err := g.clock.Sleep(ctx, g.config.ChunkDelay); err != nil {
				return artists, err
			}
		}

		body, err := g.fetcher.Get(ctx, "/artists", map[string]string{"ids": strings.Join(part, ",")},
			datadog.RequestTypeArtists)

		if err != nil {
			if ctx.Err() != nil {
				span.Finish(tracer.WithError(err))
				return artists, err
			}

			logger.Logger.Errorf("Failed to get artists chunk %d - %v", i, err)
			errs = append(errs, err)
			continue
		}

		var response artistsResponse

		if err := json.Unmarshal(body, &response); err != nil {
			logger.Logger.Errorf("Failed to decode artists chunk %d - %v", i, err)
			errs = append(errs, fmt.Errorf("spotify client: decoding artists: %w", err))
			continue
		}

		for _, artist := range response.Artists {
			// unknown ids come back as null
			if artist == nil || artist.ID == "" {
				continue
			}

			artists[string(artist.ID)] = appmodels.Artist{
				Id:         string(artist.ID),
				Name:       artist.Name,
				Genres:     artist.Genres,
				Popularity: artist.Popularity,
			}
		}

		logger.Logger.Infof("Fetched %d artists successfully", len(part))
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		span.Finish(tracer.WithError(err))
		return artists, err
	}

	return artists, nil
}
