package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/playlist-insights/appmodels"
	"github.com/playlist-insights/datadog"
	"github.com/playlist-insights/logger"
	"github.com/zmb3/spotify"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const playlistHeaderFields = "id,name,tracks.total"

// PlaylistInfo reads the playlist header. The playlist is the central resource, every failure is returned.
func (g *Gateway) PlaylistInfo(ctx context.Context, playlistId string) (appmodels.PlaylistInfo, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "spotify.playlist.info")
	defer span.Finish()

	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistId))
	body, err := g.fetcher.Get(ctx, endpoint, map[string]string{"fields": playlistHeaderFields},
		datadog.RequestTypePlaylist)

	if err != nil {
		span.Finish(tracer.WithError(err))
		return appmodels.PlaylistInfo{}, fmt.Errorf("spotify client: playlist %s: %w", playlistId, err)
	}

	var playlist spotify.SimplePlaylist

	if err := json.Unmarshal(body, &playlist); err != nil {
		span.Finish(tracer.WithError(err))
		return appmodels.PlaylistInfo{}, fmt.Errorf("spotify client: decoding playlist %s: %w", playlistId, err)
	}

	return appmodels.PlaylistInfo{
		Id:          playlistId,
		Name:        playlist.Name,
		TotalTracks: int(playlist.Tracks.Total),
	}, nil
}

// AllTracksOf reads up to maxTracks playlist items in order. Local files and removed tracks have
// no id and are dropped, a track present twice is kept once.
func (g *Gateway) AllTracksOf(ctx context.Context, playlistId string, maxTracks int) ([]appmodels.Track, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "spotify.playlist.tracks")
	defer span.Finish()

	log := logger.WithPlaylist(playlistId)

	result, err := g.fetcher.FetchAllPages(ctx, PageRequest{
		Endpoint:    fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistId)),
		Query:       map[string]string{"additional_types": "track"},
		PageSize:    g.config.PageSize,
		MaxItems:    maxTracks,
		Critical:    true,
		RequestType: datadog.RequestTypePlaylistSongs,
	})

	if err != nil {
		log.Errorf("Failed to get tracks after %d items %v", len(result.Items), err)
		span.Finish(tracer.WithError(err))
		return nil, fmt.Errorf("spotify client: tracks of playlist %s: %w", playlistId, err)
	}

	tracks := make([]appmodels.Track, 0, len(result.Items))
	trackSeen := make(map[spotify.ID]struct{})

	for _, raw := range result.Items {
		var playlistTrack spotify.PlaylistTrack

		if err := json.Unmarshal(raw, &playlistTrack); err != nil {
			log.Warningf("Ignoring undecodable playlist item %v", err)
			continue
		}

		track := playlistTrack.Track

		if track.ID == "" {
			continue
		}

		if _, seen := trackSeen[track.ID]; seen {
			continue
		}
		trackSeen[track.ID] = struct{}{}

		tracks = append(tracks, toTrack(track))
	}

	log.Infof("Found %d distinct tracks in %d playlist items (%d requests)",
		len(tracks), len(result.Items), result.Requests)

	return tracks, nil
}

func toTrack(track spotify.FullTrack) appmodels.Track {
	artists := make([]appmodels.ArtistRef, 0, len(track.Artists))

	for _, artist := range track.Artists {
		artists = append(artists, appmodels.ArtistRef{Id: string(artist.ID), Name: artist.Name})
	}

	return appmodels.Track{
		Id:         string(track.ID),
		Name:       track.Name,
		Artists:    artists,
		AlbumId:    string(track.Album.ID),
		AlbumName:  track.Album.Name,
		DurationMs: track.Duration,
		Popularity: track.Popularity,
	}
}
