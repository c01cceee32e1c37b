package appmodels

// Catalog records as the analysis sees them, decoupled from the upstream wire format.

type ArtistRef struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type Track struct {
	Id         string      `json:"id"`
	Name       string      `json:"name"`
	Artists    []ArtistRef `json:"artists"`
	AlbumId    string      `json:"album_id"`
	AlbumName  string      `json:"album_name"`
	DurationMs int         `json:"duration_ms"`
	Popularity int         `json:"popularity"` // out of 100
}

type Artist struct {
	Id         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

// AudioFeature is keyed by track id. All values except Tempo are in [0,1].
type AudioFeature struct {
	TrackId          string  `json:"track_id"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Valence          float64 `json:"valence"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Tempo            float64 `json:"tempo"`
}

type PlaylistInfo struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	TotalTracks int    `json:"total_tracks"`
}

// UniqueArtistIds returns the artist ids of the tracks in first-seen order, without duplicates.
func UniqueArtistIds(tracks []Track) []string {
	ids := make([]string, 0)
	artistSeen := make(map[string]struct{}) // this acts like a set

	for _, track := range tracks {
		for _, artist := range track.Artists {
			if artist.Id == "" {
				continue
			}

			if _, seen := artistSeen[artist.Id]; !seen {
				artistSeen[artist.Id] = struct{}{}
				ids = append(ids, artist.Id)
			}
		}
	}

	return ids
}

func TrackIds(tracks []Track) []string {
	ids := make([]string, 0, len(tracks))

	for _, track := range tracks {
		ids = append(ids, track.Id)
	}

	return ids
}

// ArtistGenres flattens fetched artists into the artist id -> genres map used by the aggregation.
func ArtistGenres(artists map[string]Artist) map[string][]string {
	genres := make(map[string][]string, len(artists))

	for id, artist := range artists {
		genres[id] = artist.Genres
	}

	return genres
}
