package recommend

import (
	"reflect"
	"strings"
	"testing"

	"github.com/playlist-insights/appmodels"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	engine, err := NewDefaultEngine()
	if err != nil {
		t.Fatalf("failed to load the default catalog %v", err)
	}

	return engine
}

func profileWith(diversity float64, mood appmodels.Mood, genres ...string) appmodels.MusicalProfile {
	top := make([]appmodels.GenreCount, 0, len(genres))
	for i, genre := range genres {
		top = append(top, appmodels.GenreCount{Genre: genre, Count: len(genres) - i})
	}

	dominant := appmodels.UnknownGenre
	if len(genres) > 0 {
		dominant = genres[0]
	}

	return appmodels.MusicalProfile{
		PlaylistId: "p1",
		GenreAnalysis: appmodels.GenreAnalysis{
			TopGenres:      top,
			GenreDiversity: diversity,
			DominantGenre:  dominant,
			TotalGenres:    len(genres),
		},
		AudioAnalysis: appmodels.AudioAnalysis{
			AverageEnergy: 0.6,
			Mood:          mood,
			SampleCount:   10,
		},
	}
}

func TestSimilarGenresAreCappedAndUnique(t *testing.T) {
	engine := newTestEngine(t)

	similar := engine.Recommend(profileWith(0.5, appmodels.MoodMixed, "rock", "pop", "indie")).SimilarGenres

	if len(similar) == 0 || len(similar) > maxSimilarGenres {
		t.Fatalf("expected between 1 and %d genres, got %v", maxSimilarGenres, similar)
	}

	seen := make(map[string]bool)
	for _, genre := range similar {
		if seen[genre] {
			t.Errorf("%s is repeated in %v", genre, similar)
		}
		seen[genre] = true
	}

	if similar[0] != "alternative rock" {
		t.Errorf("expected the rock family first, got %v", similar)
	}
}

func TestSimilarGenresMatchContainedFamilies(t *testing.T) {
	engine := newTestEngine(t)

	similar := engine.Recommend(profileWith(0.5, appmodels.MoodMixed, "Indie Rock")).SimilarGenres

	joined := strings.Join(similar, "|")
	if !strings.Contains(joined, "indie folk") || !strings.Contains(joined, "alternative rock") {
		t.Errorf("expected both the indie and rock families, got %v", similar)
	}
}

func TestGenreMatchesWholeWords(t *testing.T) {
	tests := []struct {
		entry    string
		playlist string
		want     bool
	}{
		{"rock", "indie rock", true},
		{"indie rock", "rock", true},
		{"Hip Hop", "alternative hip hop", true},
		{"rap", "trap", false},
		{"pop", "k-pop", false},
		{"rock", "", false},
	}

	for _, test := range tests {
		if got := genreMatches(test.entry, test.playlist); got != test.want {
			t.Errorf("genreMatches(%q, %q) = %v, want %v", test.entry, test.playlist, got, test.want)
		}
	}
}

func TestSimilarGenresOnlyUseTopThree(t *testing.T) {
	engine := newTestEngine(t)

	similar := engine.Recommend(profileWith(0.5, appmodels.MoodMixed, "jazz", "blues", "soul", "metal")).SimilarGenres

	for _, genre := range similar {
		if strings.Contains(genre, "metal") {
			t.Errorf("expected the fourth genre to be ignored, got %v", similar)
		}
	}
}

func TestRecommendedArtistsExcludeExistingArtists(t *testing.T) {
	engine := newTestEngine(t)

	profile := profileWith(0.5, appmodels.MoodEnergetic, "rock", "indie rock")
	profile.ArtistAnalysis.TopArtists = []appmodels.ArtistCount{{Name: "foo fighters", TrackCount: 3}}

	recommendations := engine.Recommend(profile)

	if len(recommendations.RecommendedArtists) == 0 || len(recommendations.RecommendedArtists) > maxRecommendedArtists {
		t.Fatalf("unexpected artists %v", recommendations.RecommendedArtists)
	}

	names := make(map[string]bool)
	for _, artist := range recommendations.RecommendedArtists {
		if strings.EqualFold(artist.Name, "Foo Fighters") {
			t.Errorf("expected an artist of the playlist to be excluded")
		}
		if names[artist.Name] {
			t.Errorf("%s is recommended twice", artist.Name)
		}
		names[artist.Name] = true

		if artist.Reason == "" {
			t.Errorf("expected a reason for %s", artist.Name)
		}
	}

	for _, song := range recommendations.RecommendedSongs {
		if strings.EqualFold(song.Artist, "Foo Fighters") {
			t.Errorf("expected %s to be excluded", song.Title)
		}
	}
}

func TestRecommendationReasons(t *testing.T) {
	engine := newTestEngine(t)

	eclectic := engine.Recommend(profileWith(0.8, appmodels.MoodMixed, "pop"))
	for _, artist := range eclectic.RecommendedArtists {
		if !strings.HasPrefix(artist.Reason, "Adds more") {
			t.Errorf("expected an eclectic reason, got %q", artist.Reason)
		}
	}

	focused := engine.Recommend(profileWith(0.1, appmodels.MoodMixed, "pop"))
	if len(focused.RecommendedArtists) == 0 || !strings.HasPrefix(focused.RecommendedArtists[0].Reason, "Popular") {
		t.Errorf("expected a popular artist first on a focused playlist, got %+v", focused.RecommendedArtists)
	}
}

func TestEnergyLevelFor(t *testing.T) {
	tests := []struct {
		energy float64
		want   appmodels.EnergyLevel
	}{
		{0.2, appmodels.EnergyLow},
		{0.4, appmodels.EnergyMedium},
		{0.7, appmodels.EnergyMedium},
		{0.75, appmodels.EnergyHigh},
	}

	for _, test := range tests {
		profile := profileWith(0.5, appmodels.MoodMixed, "ambient")
		profile.AudioAnalysis.AverageEnergy = test.energy

		if got := EnergyLevelFor(profile); got != test.want {
			t.Errorf("energy %v: expected %s, got %s", test.energy, test.want, got)
		}
	}
}

func TestEnergyLevelFallsBackOnGenre(t *testing.T) {
	tests := map[string]appmodels.EnergyLevel{
		"death metal":appmodels.EnergyHigh,
		"ambient":    appmodels.EnergyLow,
		"pop":        appmodels.EnergyMedium,
		"unknown":    appmodels.EnergyMedium,
		"electronic": appmodels.EnergyHigh,
		"cool jazz":  appmodels.EnergyLow,
	}

	for genre, want := range tests {
		profile := profileWith(0.5, appmodels.MoodMixed, genre)
		profile.AudioAnalysis = appmodels.AudioAnalysis{Mood: appmodels.MoodMixed}

		if got := EnergyLevelFor(profile); got != want {
			t.Errorf("%s: expected %s, got %s", genre, want, got)
		}
	}
}

func TestRecommendIsDeterministic(t *testing.T) {
	engine := newTestEngine(t)
	profile := profileWith(0.5, appmodels.MoodHappy, "pop", "dance", "house", "indie")

	first := engine.Recommend(profile)
	second := engine.Recommend(profile)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected the same recommendations\n%+v\n%+v", first, second)
	}
}

func TestRecommendationListsAreCapped(t *testing.T) {
	engine := newTestEngine(t)

	genres := []string{"rock", "pop", "hip hop", "electronic", "jazz", "indie", "metal", "punk", "soul", "funk",
		"latin", "folk", "country", "blues", "classical", "reggae", "k-pop"}

	for _, diversity := range []float64{0.1, 0.5, 0.9} {
		recommendations := engine.Recommend(profileWith(diversity, appmodels.MoodHappy, genres...))

		if len(recommendations.RecommendedSongs) > maxRecommendedSongs ||
			len(recommendations.MoodSuggestions) > maxMoodSuggestions ||
			len(recommendations.PlaylistSuggestions) > maxPlaylistSuggestions ||
			len(recommendations.DiscoveryTips) > maxDiscoveryTips {
			t.Errorf("diversity %v: a list is over its cap %+v", diversity, recommendations)
		}

		if len(recommendations.MoodSuggestions) == 0 || len(recommendations.DiscoveryTips) == 0 {
			t.Errorf("diversity %v: expected suggestions and tips", diversity)
		}
	}
}

func TestPlaylistSuggestionsFillGenre(t *testing.T) {
	engine := newTestEngine(t)

	suggestions := engine.Recommend(profileWith(0.5, appmodels.MoodEnergetic, "indie rock")).PlaylistSuggestions

	if len(suggestions) == 0 || suggestions[0] != "Indie Rock Power Hour" {
		t.Errorf("expected the dominant genre in the first suggestion, got %v", suggestions)
	}
}

func TestUnknownGenreIsNeverSuggested(t *testing.T) {
	engine := newTestEngine(t)

	recommendations := engine.Recommend(profileWith(0, appmodels.MoodMixed))

	for _, suggestion := range recommendations.PlaylistSuggestions {
		if strings.Contains(suggestion, genrePlaceholder) || strings.Contains(strings.ToLower(suggestion), "unknown") {
			t.Errorf("unexpected suggestion %q", suggestion)
		}
	}

	if recommendations.SimilarGenres == nil || recommendations.RecommendedArtists == nil ||
		recommendations.RecommendedSongs == nil {
		t.Error("expected empty lists rather than nil")
	}
}

func TestDiscoveryTipsFollowDiversity(t *testing.T) {
	engine := newTestEngine(t)
	bank := engine.catalog.DiscoveryTips

	focused := engine.Recommend(profileWith(0.1, appmodels.MoodMixed, "pop", "dance pop")).DiscoveryTips
	if focused[0] != bank.LowDiversity[0] {
		t.Errorf("expected a low diversity tip first, got %v", focused)
	}

	eclectic := engine.Recommend(profileWith(0.9, appmodels.MoodMixed, "pop", "jazz")).DiscoveryTips
	if eclectic[0] != bank.HighDiversity[0] {
		t.Errorf("expected a high diversity tip first, got %v", eclectic)
	}
}

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(`{
		"genreFamilies": {"Synthwave": ["outrun", "darksynth"]},
		"artists": [{"name": "Kavinsky", "genre": "synthwave", "tier": "high"}],
		"songs": [{"title": "Nightcall", "artist": "Kavinsky", "genre": "synthwave", "tier": "high", "year": 2010}],
		"moodSuggestions": {"mixed": ["Night drives"]},
		"discoveryTips": {"default": ["Follow the soundtrack credits"]}
	}`))

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	engine := NewEngine(catalog)
	recommendations := engine.Recommend(profileWith(0.5, appmodels.MoodMixed, "synthwave"))

	if !reflect.DeepEqual(recommendations.SimilarGenres, []string{"outrun", "darksynth"}) {
		t.Errorf("unexpected similar genres %v", recommendations.SimilarGenres)
	}

	if len(recommendations.RecommendedSongs) != 1 || recommendations.RecommendedSongs[0].Year != 2010 {
		t.Errorf("unexpected songs %+v", recommendations.RecommendedSongs)
	}

	if !reflect.DeepEqual(recommendations.DiscoveryTips, []string{"Follow the soundtrack credits"}) {
		t.Errorf("unexpected tips %v", recommendations.DiscoveryTips)
	}

	if _, err := ParseCatalog([]byte("[")); err == nil {
		t.Error("expected an invalid catalog to be rejected")
	}
}
