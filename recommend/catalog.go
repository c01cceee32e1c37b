package recommend

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed catalog.json
var embeddedCatalog []byte

const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

type ArtistEntry struct {
	Name  string `json:"name"`
	Genre string `json:"genre"`
	Tier  string `json:"tier"`
}

type SongEntry struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre"`
	Tier   string `json:"tier"`
	Year   int    `json:"year"`
}

type DiscoveryTips struct {
	HighDiversity []string `json:"highDiversity"`
	LowDiversity  []string `json:"lowDiversity"`
	FewGenres     []string `json:"fewGenres"`
	ManyGenres    []string `json:"manyGenres"`
	Default       []string `json:"default"`
}

// Catalog is the reference data behind the recommendations. Extending it never requires code changes.
type Catalog struct {
	GenreFamilies                map[string][]string `json:"genreFamilies"`
	Artists                      []ArtistEntry       `json:"artists"`
	Songs                        []SongEntry         `json:"songs"`
	MoodSuggestions              map[string][]string `json:"moodSuggestions"`
	DiversityMoodSuggestions     map[string][]string `json:"diversityMoodSuggestions"`
	PlaylistSuggestions          map[string][]string `json:"playlistSuggestions"`
	DiversityPlaylistSuggestions map[string][]string `json:"diversityPlaylistSuggestions"`
	DiscoveryTips                DiscoveryTips       `json:"discoveryTips"`
}

func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(embeddedCatalog)
}

func LoadCatalog(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)

	if err != nil {
		return nil, err
	}

	return ParseCatalog(data)
}

func LoadCatalogFile(path string) (*Catalog, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCatalog(file)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog

	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("recommend: invalid catalog: %w", err)
	}

	// lookups are done on lower-cased genres
	families := make(map[string][]string, len(catalog.GenreFamilies))
	for genre, related := range catalog.GenreFamilies {
		families[strings.ToLower(genre)] = related
	}
	catalog.GenreFamilies = families

	return &catalog, nil
}
