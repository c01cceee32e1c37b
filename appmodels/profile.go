package appmodels

import "time"

const UnknownGenre = "unknown"

// MusicalProfile is the result of one playlist analysis. It is never mutated once returned,
// so the same value can be served from a cache.
type MusicalProfile struct {
	PlaylistId      string             `json:"playlistId"`
	PlaylistName    string             `json:"playlistName"`
	TotalTracks     int                `json:"totalTracks"`
	GenreAnalysis   GenreAnalysis      `json:"genreAnalysis"`
	AudioAnalysis   AudioAnalysis      `json:"audioAnalysis"`
	ArtistAnalysis  ArtistAnalysis     `json:"artistAnalysis"`
	Recommendations Recommendations    `json:"recommendations"`
	Listening       *ListeningEstimate `json:"listeningEstimate,omitempty"`
	AnalyzedAt      time.Time          `json:"analyzedAt"`
}

type GenreCount struct {
	Genre      string  `json:"genre"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type GenreAnalysis struct {
	TopGenres      []GenreCount `json:"topGenres"`
	GenreDiversity float64      `json:"genreDiversity"`
	DominantGenre  string       `json:"dominantGenre"`
	TotalGenres    int          `json:"totalGenres"`
}

type AudioAnalysis struct {
	AverageEnergy           float64 `json:"averageEnergy"`
	AverageDanceability     float64 `json:"averageDanceability"`
	AverageValence          float64 `json:"averageValence"`
	AverageTempo            float64 `json:"averageTempo"`
	AverageAcousticness     float64 `json:"averageAcousticness"`
	AverageInstrumentalness float64 `json:"averageInstrumentalness"`
	Mood                    Mood    `json:"mood"`
	SampleCount             int     `json:"sampleCount"`
}

// HasSamples is false when no track had a feature record, in which case all averages are 0.
func (a AudioAnalysis) HasSamples() bool {
	return a.SampleCount > 0
}

type ArtistCount struct {
	Name       string `json:"name"`
	TrackCount int    `json:"trackCount"`
}

type ArtistAnalysis struct {
	UniqueArtists   int           `json:"uniqueArtists"`
	TopArtists      []ArtistCount `json:"topArtists"`
	ArtistDiversity float64       `json:"artistDiversity"`
}

type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

type RecommendedArtist struct {
	Name   string `json:"name"`
	Genre  string `json:"genre"`
	Reason string `json:"reason"`
}

type RecommendedSong struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre"`
	Reason string `json:"reason"`
	Year   int    `json:"year,omitempty"`
}

type Recommendations struct {
	SimilarGenres       []string            `json:"similarGenres"`
	RecommendedArtists  []RecommendedArtist `json:"recommendedArtists"`
	RecommendedSongs    []RecommendedSong   `json:"recommendedSongs"`
	MoodSuggestions     []string            `json:"moodSuggestions"`
	EnergyLevel         EnergyLevel         `json:"energyLevel"`
	PlaylistSuggestions []string            `json:"playlistSuggestions"`
	DiscoveryTips       []string            `json:"discoveryTips"`
}
