package recommend

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/playlist-insights/appmodels"
	"github.com/thoas/go-funk"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const familyLookupGenres = 3

const maxSimilarGenres = 8
const maxRecommendedArtists = 8
const maxRecommendedSongs = 8
const maxMoodSuggestions = 6
const maxPlaylistSuggestions = 4
const maxDiscoveryTips = 3

const highDiversityThreshold = 0.7
const lowDiversityThreshold = 0.3
const fewGenresThreshold = 5
const manyGenresThreshold = 15

const lowEnergyThreshold = 0.4
const highEnergyThreshold = 0.7

const genrePlaceholder = "{genre}"

var highEnergyKeywords = []string{"rock", "metal", "electronic"}
var lowEnergyKeywords = []string{"ambient", "chill", "jazz"}

// Engine turns a profile into recommendations. It holds no mutable state and the same
// profile always gives the same recommendations.
type Engine struct {
	catalog    *Catalog
	familyKeys []string
}

func NewEngine(catalog *Catalog) *Engine {
	keys := make([]string, 0, len(catalog.GenreFamilies))
	for genre := range catalog.GenreFamilies {
		keys = append(keys, genre)
	}
	sort.Strings(keys)

	return &Engine{catalog: catalog, familyKeys: keys}
}

// NewDefaultEngine uses the catalog embedded in the binary.
func NewDefaultEngine() (*Engine, error) {
	catalog, err := DefaultCatalog()

	if err != nil {
		return nil, err
	}

	return NewEngine(catalog), nil
}

func (e *Engine) Recommend(profile appmodels.MusicalProfile) appmodels.Recommendations {
	return appmodels.Recommendations{
		SimilarGenres:       e.similarGenres(profile.GenreAnalysis.TopGenres),
		RecommendedArtists:  e.recommendedArtists(profile),
		RecommendedSongs:    e.recommendedSongs(profile),
		MoodSuggestions:     e.moodSuggestions(profile),
		EnergyLevel:         EnergyLevelFor(profile),
		PlaylistSuggestions: e.playlistSuggestions(profile),
		DiscoveryTips:       e.discoveryTips(profile),
	}
}

func (e *Engine) similarGenres(topGenres []appmodels.GenreCount) []string {
	similar := make([]string, 0)

	for i, genre := range topGenres {
		if i == familyLookupGenres {
			break
		}
		similar = append(similar, e.family(genre.Genre)...)
	}

	return capped(funk.UniqString(similar), maxSimilarGenres)
}

// family returns the related genres of an exact table entry, or of every entry whose words the genre
// contains ("indie rock" gets both the indie and the rock families, "trap" gets no rap family).
func (e *Engine) family(genre string) []string {
	genre = strings.ToLower(genre)

	if related, ok := e.catalog.GenreFamilies[genre]; ok {
		return related
	}

	related := make([]string, 0)

	for _, key := range e.familyKeys {
		if containsWords(genre, key) {
			related = append(related, e.catalog.GenreFamilies[key]...)
		}
	}

	return related
}

func (e *Engine) recommendedArtists(profile appmodels.MusicalProfile) []appmodels.RecommendedArtist {
	existing := topArtistNames(profile)
	diversity := profile.GenreAnalysis.GenreDiversity

	type candidate struct {
		entry ArtistEntry
		genre string
	}
	candidates := make([]candidate, 0)

	for _, genre := range profile.GenreAnalysis.TopGenres {
		for _, entry := range e.catalog.Artists {
			if genreMatches(entry.Genre, genre.Genre) {
				candidates = append(candidates, candidate{entry, genre.Genre})
			}
		}
	}

	if diversity < lowDiversityThreshold {
		sort.SliceStable(candidates, func(i, j int) bool {
			return isHighTier(candidates[i].entry.Tier) && !isHighTier(candidates[j].entry.Tier)
		})
	}

	artists := make([]appmodels.RecommendedArtist, 0, maxRecommendedArtists)
	seen := make([]string, 0)

	for _, c := range candidates {
		name := strings.ToLower(c.entry.Name)

		if funk.ContainsString(existing, name) || funk.ContainsString(seen, name) {
			continue
		}
		seen = append(seen, name)

		artists = append(artists, appmodels.RecommendedArtist{
			Name:   c.entry.Name,
			Genre:  c.entry.Genre,
			Reason: reason("artist", c.entry.Genre, c.entry.Tier, c.genre, diversity),
		})

		if len(artists) == maxRecommendedArtists {
			break
		}
	}

	return artists
}

func (e *Engine) recommendedSongs(profile appmodels.MusicalProfile) []appmodels.RecommendedSong {
	existing := topArtistNames(profile)
	diversity := profile.GenreAnalysis.GenreDiversity

	type candidate struct {
		entry SongEntry
		genre string
	}
	candidates := make([]candidate, 0)

	for _, genre := range profile.GenreAnalysis.TopGenres {
		for _, entry := range e.catalog.Songs {
			if genreMatches(entry.Genre, genre.Genre) {
				candidates = append(candidates, candidate{entry, genre.Genre})
			}
		}
	}

	if diversity < lowDiversityThreshold {
		sort.SliceStable(candidates, func(i, j int) bool {
			return isHighTier(candidates[i].entry.Tier) && !isHighTier(candidates[j].entry.Tier)
		})
	}

	songs := make([]appmodels.RecommendedSong, 0, maxRecommendedSongs)
	seen := make([]string, 0)

	for _, c := range candidates {
		title := strings.ToLower(c.entry.Title)

		if funk.ContainsString(existing, strings.ToLower(c.entry.Artist)) || funk.ContainsString(seen, title) {
			continue
		}
		seen = append(seen, title)

		songs = append(songs, appmodels.RecommendedSong{
			Title:  c.entry.Title,
			Artist: c.entry.Artist,
			Genre:  c.entry.Genre,
			Reason: reason("track", c.entry.Genre, c.entry.Tier, c.genre, diversity),
			Year:   c.entry.Year,
		})

		if len(songs) == maxRecommendedSongs {
			break
		}
	}

	return songs
}

// EnergyLevelFor thresholds the average energy, or reads the dominant genre when no track had features.
func EnergyLevelFor(profile appmodels.MusicalProfile) appmodels.EnergyLevel {
	audio := profile.AudioAnalysis

	if audio.HasSamples() {
		switch {
		case audio.AverageEnergy < lowEnergyThreshold:
			return appmodels.EnergyLow
		case audio.AverageEnergy > highEnergyThreshold:
			return appmodels.EnergyHigh
		default:
			return appmodels.EnergyMedium
		}
	}

	genre := strings.ToLower(profile.GenreAnalysis.DominantGenre)

	switch {
	case containsAny(genre, highEnergyKeywords):
		return appmodels.EnergyHigh
	case containsAny(genre, lowEnergyKeywords):
		return appmodels.EnergyLow
	default:
		return appmodels.EnergyMedium
	}
}

func (e *Engine) moodSuggestions(profile appmodels.MusicalProfile) []string {
	suggestions := make([]string, 0)
	suggestions = append(suggestions, e.catalog.MoodSuggestions[string(profile.AudioAnalysis.Mood)]...)
	suggestions = append(suggestions, diversityBank(e.catalog.DiversityMoodSuggestions, profile)...)

	return capped(funk.UniqString(suggestions), maxMoodSuggestions)
}

func (e *Engine) playlistSuggestions(profile appmodels.MusicalProfile) []string {
	templates := make([]string, 0)
	templates = append(templates, e.catalog.PlaylistSuggestions[string(profile.AudioAnalysis.Mood)]...)
	templates = append(templates, diversityBank(e.catalog.DiversityPlaylistSuggestions, profile)...)

	dominant := profile.GenreAnalysis.DominantGenre
	suggestions := make([]string, 0, len(templates))

	for _, template := range templates {
		if strings.Contains(template, genrePlaceholder) {
			if dominant == "" || dominant == appmodels.UnknownGenre {
				continue
			}
			template = strings.ReplaceAll(template, genrePlaceholder, cases.Title(language.Und).String(dominant))
		}
		suggestions = append(suggestions, template)
	}

	return capped(funk.UniqString(suggestions), maxPlaylistSuggestions)
}

func (e *Engine) discoveryTips(profile appmodels.MusicalProfile) []string {
	tips := make([]string, 0)
	bank := e.catalog.DiscoveryTips
	diversity := profile.GenreAnalysis.GenreDiversity
	genreCount := profile.GenreAnalysis.TotalGenres

	if diversity > highDiversityThreshold {
		tips = append(tips, bank.HighDiversity...)
	} else if diversity < lowDiversityThreshold {
		tips = append(tips, bank.LowDiversity...)
	}

	if genreCount < fewGenresThreshold {
		tips = append(tips, bank.FewGenres...)
	} else if genreCount > manyGenresThreshold {
		tips = append(tips, bank.ManyGenres...)
	}

	tips = append(tips, bank.Default...)

	return capped(funk.UniqString(tips), maxDiscoveryTips)
}

func diversityBank(bank map[string][]string, profile appmodels.MusicalProfile) []string {
	diversity := profile.GenreAnalysis.GenreDiversity

	switch {
	case diversity > highDiversityThreshold:
		return bank["high"]
	case diversity < lowDiversityThreshold:
		return bank["low"]
	default:
		return nil
	}
}

func reason(kind string, entryGenre string, tier string, playlistGenre string, diversity float64) string {
	switch {
	case diversity > highDiversityThreshold:
		return fmt.Sprintf("Adds more %s to your eclectic mix", entryGenre)
	case isHighTier(tier):
		return fmt.Sprintf("Popular %s %s that matches your taste", entryGenre, kind)
	default:
		return fmt.Sprintf("A %s %s picked for fans of %s", entryGenre, kind, playlistGenre)
	}
}

func topArtistNames(profile appmodels.MusicalProfile) []string {
	names := make([]string, 0, len(profile.ArtistAnalysis.TopArtists))

	for _, artist := range profile.ArtistAnalysis.TopArtists {
		names = append(names, strings.ToLower(artist.Name))
	}

	return names
}

// genreMatches is true when the words of one genre label appear in the other, "rock" matches
// "indie rock" but "rap" does not match "trap".
func genreMatches(entryGenre string, playlistGenre string) bool {
	entryGenre = strings.ToLower(entryGenre)
	playlistGenre = strings.ToLower(playlistGenre)

	return containsWords(playlistGenre, entryGenre) || containsWords(entryGenre, playlistGenre)
}

// containsWords is true when the words of part appear in label, consecutive and in order.
func containsWords(label string, part string) bool {
	labelWords := strings.Fields(label)
	partWords := strings.Fields(part)

	if len(partWords) == 0 {
		return false
	}

	for i := 0; i+len(partWords) <= len(labelWords); i++ {
		if slices.Equal(labelWords[i:i+len(partWords)], partWords) {
			return true
		}
	}

	return false
}

func isHighTier(tier string) bool {
	return strings.EqualFold(tier, TierHigh)
}

func containsAny(value string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(value, keyword) {
			return true
		}
	}

	return false
}

func capped(values []string, max int) []string {
	if values == nil {
		return []string{}
	}

	if len(values) > max {
		return values[:max]
	}

	return values
}
