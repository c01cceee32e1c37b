package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playlist-insights/appmodels"
	"github.com/playlist-insights/musicclient/clientcommon"
)

var analyzedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	mu    sync.Mutex
	calls map[string]int

	info        appmodels.PlaylistInfo
	tracks      map[string][]appmodels.Track
	artists     map[string]appmodels.Artist
	features    map[string]appmodels.AudioFeature
	topTracks   []string
	recent      []string
	userScoped  bool
	infoErr     error
	tracksErr   error
	artistsErr  error
	featuresErr error
	topErr      error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		calls: make(map[string]int),
		info:  appmodels.PlaylistInfo{Id: "p1", Name: "Road Trip", TotalTracks: 4},
		tracks: map[string][]appmodels.Track{
			"p1": {
				{Id: "t1", Name: "One", Artists: []appmodels.ArtistRef{{Id: "a1", Name: "Rocker"}}},
				{Id: "t2", Name: "Two", Artists: []appmodels.ArtistRef{{Id: "a2", Name: "Popper"}}},
				{Id: "t3", Name: "Three", Artists: []appmodels.ArtistRef{{Id: "a1", Name: "Rocker"}}},
				{Id: "t4", Name: "Four", Artists: []appmodels.ArtistRef{{Id: "a3", Name: "Popstar"}}},
			},
		},
		artists: map[string]appmodels.Artist{
			"a1": {Id: "a1", Name: "Rocker", Genres: []string{"rock"}},
			"a2": {Id: "a2", Name: "Popper", Genres: []string{"pop"}},
			"a3": {Id: "a3", Name: "Popstar", Genres: []string{"pop"}},
		},
		features: map[string]appmodels.AudioFeature{
			"t1": {TrackId: "t1", Energy: 0.8, Valence: 0.4, Tempo: 130},
			"t2": {TrackId: "t2", Energy: 0.9, Valence: 0.6, Tempo: 140},
		},
	}
}

func (c *fakeCatalog) called(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[name]++
}

func (c *fakeCatalog) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *fakeCatalog) PlaylistInfo(ctx context.Context, playlistId string) (appmodels.PlaylistInfo, error) {
	c.called("info")
	info := c.info
	info.Id = playlistId
	return info, c.infoErr
}

func (c *fakeCatalog) AllTracksOf(ctx context.Context, playlistId string, maxTracks int) ([]appmodels.Track, error) {
	c.called("tracks")
	if c.tracksErr != nil {
		return nil, c.tracksErr
	}
	tracks := c.tracks[playlistId]
	if len(tracks) > maxTracks {
		tracks = tracks[:maxTracks]
	}
	return tracks, nil
}

func (c *fakeCatalog) ArtistsByIds(ctx context.Context, ids []string) (map[string]appmodels.Artist, error) {
	c.called("artists")
	return c.artists, c.artistsErr
}

func (c *fakeCatalog) AudioFeaturesByIds(ctx context.Context, ids []string) (map[string]appmodels.AudioFeature, error) {
	c.called("features")
	return c.features, c.featuresErr
}

func (c *fakeCatalog) RecentlyPlayed(ctx context.Context, limit int) ([]string, error) {
	c.called("recent")
	return c.recent, nil
}

func (c *fakeCatalog) TopTracks(ctx context.Context, limit int) ([]string, error) {
	c.called("top")
	return c.topTracks, c.topErr
}

func (c *fakeCatalog) UserScoped() bool {
	return c.userScoped
}

type fakeRecommender struct{}

func (fakeRecommender) Recommend(profile appmodels.MusicalProfile) appmodels.Recommendations {
	return appmodels.Recommendations{
		SimilarGenres: []string{"similar to " + profile.GenreAnalysis.DominantGenre},
		EnergyLevel:   appmodels.EnergyMedium,
	}
}

func testOptions() Options {
	options := DefaultOptions()
	options.Now = func() time.Time { return analyzedAt }
	return options
}

func newTestAnalyzer(t *testing.T, catalog *fakeCatalog, withCache bool) *Analyzer {
	t.Helper()

	var cache *ProfileCache
	if withCache {
		var err error
		cache, err = NewProfileCache(16, time.Minute)
		if err != nil {
			t.Fatalf("failed to build cache %v", err)
		}
	}

	return NewAnalyzer(catalog, fakeRecommender{}, cache, testOptions())
}

func TestAnalyze(t *testing.T) {
	catalog := newFakeCatalog()
	analyzer := newTestAnalyzer(t, catalog, false)

	profile, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1"})

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if profile.PlaylistId != "p1" || profile.PlaylistName != "Road Trip" || profile.TotalTracks != 4 {
		t.Errorf("unexpected header %+v", profile)
	}

	if profile.GenreAnalysis.DominantGenre != "rock" || profile.GenreAnalysis.GenreDiversity != 1 {
		t.Errorf("unexpected genre analysis %+v", profile.GenreAnalysis)
	}

	if profile.AudioAnalysis.Mood != appmodels.MoodEnergetic || profile.AudioAnalysis.SampleCount != 2 {
		t.Errorf("unexpected audio analysis %+v", profile.AudioAnalysis)
	}

	if profile.Recommendations.SimilarGenres[0] != "similar to rock" {
		t.Errorf("expected recommendations computed on the profile, got %+v", profile.Recommendations)
	}

	if !profile.AnalyzedAt.Equal(analyzedAt) {
		t.Errorf("unexpected analysis time %s", profile.AnalyzedAt)
	}

	if profile.Listening != nil || catalog.count("top") != 0 {
		t.Error("expected no listening estimate for an application credential")
	}
}

func TestAnalyzeEmptyPlaylist(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.tracks["empty"] = nil
	analyzer := newTestAnalyzer(t, catalog, false)

	_, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "empty"})

	if !errors.Is(err, ErrEmptyPlaylist) {
		t.Fatalf("expected ErrEmptyPlaylist, got %v", err)
	}

	if ErrorCode(err) != CodeEmptyPlaylist {
		t.Errorf("unexpected code %s", ErrorCode(err))
	}

	if catalog.count("artists") != 0 || catalog.count("features") != 0 {
		t.Error("expected no auxiliary read for an empty playlist")
	}
}

func TestAnalyzeTrackFailureAborts(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.tracksErr = &clientcommon.UpstreamError{Endpoint: "/playlists/p1/tracks", StatusCode: 404}
	analyzer := newTestAnalyzer(t, catalog, false)

	_, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1"})

	if !errors.Is(err, clientcommon.ErrAccessRestricted) {
		t.Fatalf("expected the upstream error, got %v", err)
	}

	if ErrorCode(err) != CodeAccessRestricted {
		t.Errorf("unexpected code %s", ErrorCode(err))
	}
}

func TestAnalyzeExhaustedRetriesAborts(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.infoErr = errors.Join(clientcommon.ErrExhaustedRetries, &clientcommon.UpstreamError{StatusCode: 503})
	analyzer := newTestAnalyzer(t, catalog, false)

	_, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1"})

	if ErrorCode(err) != CodeUpstreamUnavailable {
		t.Errorf("expected an unavailable upstream, got %v", err)
	}
}

func TestAnalyzeWithoutFeaturesDegrades(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.features = map[string]appmodels.AudioFeature{}
	analyzer := newTestAnalyzer(t, catalog, false)

	profile, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1"})

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	audio := profile.AudioAnalysis
	if audio.SampleCount != 0 || audio.AverageEnergy != 0 || audio.AverageTempo != 0 {
		t.Errorf("expected zero averages, got %+v", audio)
	}

	if audio.Mood != appmodels.MoodEnergetic {
		t.Errorf("expected the mood of the dominant genre, got %s", audio.Mood)
	}
}

func TestAnalyzeArtistFailureDegrades(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.artists = map[string]appmodels.Artist{"a2": {Id: "a2", Genres: []string{"pop"}}}
	catalog.artistsErr = errors.New("chunk failed")
	catalog.featuresErr = errors.New("chunk failed")
	analyzer := newTestAnalyzer(t, catalog, false)

	profile, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1"})

	if err != nil {
		t.Fatalf("expected a degraded profile, got %v", err)
	}

	if profile.GenreAnalysis.DominantGenre != "pop" || profile.GenreAnalysis.TotalGenres != 1 {
		t.Errorf("expected the genres of the artists read, got %+v", profile.GenreAnalysis)
	}

	if profile.AudioAnalysis.SampleCount != 2 {
		t.Errorf("expected the partial audio features to be used, got %+v", profile.AudioAnalysis)
	}
}

func TestAnalyzeListeningEstimate(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.userScoped = true
	catalog.topTracks = []string{"t2"}
	catalog.recent = []string{"t1", "t1", "t9"}
	analyzer := newTestAnalyzer(t, catalog, false)

	profile, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1"})

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	estimate := profile.Listening
	if estimate == nil {
		t.Fatal("expected a listening estimate")
	}

	// 4 baseline, 8 for t2, 2 recent plays of t1
	if estimate.EstimatedPlays != 14 || estimate.TopTracksInPlaylist != 1 || estimate.RecentlyPlayedInPlaylist != 1 {
		t.Errorf("unexpected estimate %+v", estimate)
	}
}

func TestAnalyzeListeningFailureSkipsEstimate(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.userScoped = true
	catalog.topErr = errors.New("forbidden")
	analyzer := newTestAnalyzer(t, catalog, false)

	profile, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1"})

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if profile.Listening != nil {
		t.Errorf("expected no estimate, got %+v", profile.Listening)
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	catalog := newFakeCatalog()
	analyzer := newTestAnalyzer(t, catalog, true)

	first, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	second, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if catalog.count("tracks") != 1 {
		t.Errorf("expected the second analysis to be served from cache, tracks read %d times", catalog.count("tracks"))
	}

	if first.AnalyzedAt != second.AnalyzedAt {
		t.Error("expected the cached profile")
	}

	if _, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1", Refresh: true}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if _, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1", MaxTracks: 2}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if catalog.count("tracks") != 3 {
		t.Errorf("expected refresh and another cap to bypass the cache, tracks read %d times", catalog.count("tracks"))
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.infoErr = context.Canceled
	analyzer := newTestAnalyzer(t, catalog, false)

	_, err := analyzer.Analyze(context.Background(), Request{PlaylistId: "p1"})

	if ErrorCode(err) != CodeCanceled {
		t.Errorf("expected a cancelled analysis, got %v", err)
	}
}

func TestAnalyzeManyKeepsOrder(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.tracks["p2"] = catalog.tracks["p1"][:1]
	catalog.tracks["empty"] = nil
	analyzer := newTestAnalyzer(t, catalog, false)

	results := analyzer.AnalyzeMany(context.Background(), []string{"p2", "empty", "p1"}, 0, false)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].PlaylistId != "p2" || results[0].Profile == nil || results[0].Profile.TotalTracks != 1 {
		t.Errorf("unexpected first result %+v", results[0])
	}

	if results[1].PlaylistId != "empty" || results[1].Profile != nil || results[1].Code != CodeEmptyPlaylist {
		t.Errorf("unexpected second result %+v", results[1])
	}

	if results[2].PlaylistId != "p1" || results[2].Profile == nil || results[2].Profile.TotalTracks != 4 {
		t.Errorf("unexpected third result %+v", results[2])
	}
}

func TestProfileCacheExpires(t *testing.T) {
	cache, err := NewProfileCache(4, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	now := analyzedAt
	cache.now = func() time.Time { return now }

	key := CacheKey("ns", "p1", 100)
	cache.Add(key, appmodels.MusicalProfile{PlaylistId: "p1"})

	if _, ok := cache.Get(key); !ok {
		t.Fatal("expected a fresh entry")
	}

	now = now.Add(2 * time.Minute)

	if _, ok := cache.Get(key); ok {
		t.Error("expected the entry to expire")
	}

	if cache.Len() != 0 {
		t.Errorf("expected the expired entry to be removed, %d left", cache.Len())
	}
}
