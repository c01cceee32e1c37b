package app

import (
	"context"
	"fmt"
	"time"

	"github.com/playlist-insights/appmodels"
	"github.com/playlist-insights/datadog"
	"github.com/playlist-insights/logger"
	"golang.org/x/sync/errgroup"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const DefaultMaxTracks = 2000
const DefaultAuxiliaryConcurrency = 3
const DefaultPlaylistConcurrency = 2
const DefaultListeningLimit = 50

// Catalog is the upstream data an analysis reads. Playlist reads are central and abort the analysis,
// the other reads are auxiliary and may return partial data along with an error.
type Catalog interface {
	PlaylistInfo(ctx context.Context, playlistId string) (appmodels.PlaylistInfo, error)
	AllTracksOf(ctx context.Context, playlistId string, maxTracks int) ([]appmodels.Track, error)
	ArtistsByIds(ctx context.Context, ids []string) (map[string]appmodels.Artist, error)
	AudioFeaturesByIds(ctx context.Context, ids []string) (map[string]appmodels.AudioFeature, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]string, error)
	TopTracks(ctx context.Context, limit int) ([]string, error)
	UserScoped() bool
}

type Recommender interface {
	Recommend(profile appmodels.MusicalProfile) appmodels.Recommendations
}

type Options struct {
	MaxTracks            int
	AuxiliaryConcurrency int
	PlaylistConcurrency  int
	Timeout              time.Duration
	ListeningLimit       int
	Listening            appmodels.ListeningHeuristics
	// CacheNamespace separates cached profiles of different credentials
	CacheNamespace string
	Now            func() time.Time
}

func DefaultOptions() Options {
	return Options{
		MaxTracks:            DefaultMaxTracks,
		AuxiliaryConcurrency: DefaultAuxiliaryConcurrency,
		PlaylistConcurrency:  DefaultPlaylistConcurrency,
		ListeningLimit:       DefaultListeningLimit,
		Listening:            appmodels.DefaultListeningHeuristics,
		Now:                  time.Now,
	}
}

type Request struct {
	PlaylistId string
	MaxTracks  int
	Refresh    bool // skip the cache lookup
}

// Analyzer runs the profile pipeline for one credential.
type Analyzer struct {
	catalog     Catalog
	recommender Recommender
	cache       *ProfileCache
	options     Options
}

// NewAnalyzer builds an analyzer, cache may be nil.
func NewAnalyzer(catalog Catalog, recommender Recommender, cache *ProfileCache, options Options) *Analyzer {
	defaults := DefaultOptions()

	if options.MaxTracks <= 0 {
		options.MaxTracks = defaults.MaxTracks
	}
	if options.AuxiliaryConcurrency <= 0 {
		options.AuxiliaryConcurrency = defaults.AuxiliaryConcurrency
	}
	if options.PlaylistConcurrency <= 0 {
		options.PlaylistConcurrency = defaults.PlaylistConcurrency
	}
	if options.ListeningLimit <= 0 {
		options.ListeningLimit = defaults.ListeningLimit
	}
	if options.Listening == (appmodels.ListeningHeuristics{}) {
		options.Listening = defaults.Listening
	}
	if options.Now == nil {
		options.Now = defaults.Now
	}

	return &Analyzer{
		catalog:     catalog,
		recommender: recommender,
		cache:       cache,
		options:     options,
	}
}

// Analyze returns the profile of one playlist. An empty playlist gives an error matching ErrEmptyPlaylist.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (appmodels.MusicalProfile, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "profile.analyze")
	defer span.Finish()
	span.SetTag("playlist_id", req.PlaylistId)

	maxTracks := req.MaxTracks
	if maxTracks <= 0 {
		maxTracks = a.options.MaxTracks
	}

	log := logger.WithPlaylist(req.PlaylistId)
	key := CacheKey(a.options.CacheNamespace, req.PlaylistId, maxTracks)

	if a.cache != nil && !req.Refresh {
		if profile, ok := a.cache.Get(key); ok {
			log.Infof("Serving cached profile analyzed at %s", profile.AnalyzedAt.Format(time.RFC3339))
			datadog.Increment(1, datadog.ProfileCacheHit)
			return profile, nil
		}
	}

	if a.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.options.Timeout)
		defer cancel()
	}

	started := time.Now()
	profile, err := a.analyze(ctx, req.PlaylistId, maxTracks)
	datadog.Timing(time.Since(started), datadog.ProfileAnalysisTime)

	if err != nil {
		code := ErrorCode(err)
		log.WithError(err).Errorf("Analysis failed with code %s", code)
		datadog.Increment(1, datadog.ProfileAnalysisFailed, datadog.ErrorCodeTag.Tag(code))
		span.Finish(tracer.WithError(err))
		return appmodels.MusicalProfile{}, err
	}

	datadog.Increment(1, datadog.ProfileAnalysisCount, datadog.MoodTag.Tag(string(profile.AudioAnalysis.Mood)))
	log.Infof("Analysis done: %d tracks, %d genres, mood %s",
		profile.TotalTracks, profile.GenreAnalysis.TotalGenres, profile.AudioAnalysis.Mood)

	if a.cache != nil {
		a.cache.Add(key, profile)
	}

	return profile, nil
}

func (a *Analyzer) analyze(ctx context.Context, playlistId string, maxTracks int) (appmodels.MusicalProfile, error) {
	info, err := a.catalog.PlaylistInfo(ctx, playlistId)

	if err != nil {
		return appmodels.MusicalProfile{}, fmt.Errorf("analysis: playlist %s: %w", playlistId, err)
	}

	tracks, err := a.catalog.AllTracksOf(ctx, playlistId, maxTracks)

	if err != nil {
		return appmodels.MusicalProfile{}, fmt.Errorf("analysis: tracks of playlist %s: %w", playlistId, err)
	}

	if len(tracks) == 0 {
		return appmodels.MusicalProfile{}, fmt.Errorf("analysis: playlist %s: %w", playlistId, ErrEmptyPlaylist)
	}

	datadog.Gauge(len(tracks), datadog.ProfileTracks)

	sources, err := a.fetchAuxiliary(ctx, playlistId, tracks)

	if err != nil {
		return appmodels.MusicalProfile{}, fmt.Errorf("analysis: playlist %s: %w", playlistId, err)
	}

	span, _ := tracer.StartSpanFromContext(ctx, "profile.aggregate")
	aggregation := appmodels.Aggregate(tracks, appmodels.ArtistGenres(sources.artists), sources.features)

	profile := appmodels.MusicalProfile{
		PlaylistId:     playlistId,
		PlaylistName:   info.Name,
		TotalTracks:    len(tracks),
		GenreAnalysis:  aggregation.Genres,
		AudioAnalysis:  aggregation.Audio,
		ArtistAnalysis: aggregation.Artists,
		AnalyzedAt:     a.options.Now().UTC(),
	}

	profile.Recommendations = a.recommender.Recommend(profile)

	if sources.listeningAvailable {
		estimate := appmodels.EstimateListening(tracks, sources.topTracks, sources.recentlyPlayed, a.options.Listening)
		profile.Listening = &estimate
	}
	span.Finish()

	return profile, nil
}

type auxiliaryData struct {
	artists            map[string]appmodels.Artist
	features           map[string]appmodels.AudioFeature
	topTracks          []string
	recentlyPlayed     []string
	listeningAvailable bool
}

// fetchAuxiliary reads the auxiliary sources concurrently. Their failures degrade to whatever
// was read, only a cancelled or expired context is returned as an error.
func (a *Analyzer) fetchAuxiliary(ctx context.Context, playlistId string, tracks []appmodels.Track) (auxiliaryData, error) {
	log := logger.WithPlaylist(playlistId)

	data := auxiliaryData{
		artists:  make(map[string]appmodels.Artist),
		features: make(map[string]appmodels.AudioFeature),
	}

	listening := a.catalog.UserScoped()
	var topErr, recentErr error

	g := new(errgroup.Group)
	g.SetLimit(a.options.AuxiliaryConcurrency)

	g.Go(func() error {
		artists, err := a.catalog.ArtistsByIds(ctx, appmodels.UniqueArtistIds(tracks))

		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			log.Warningf("Artist genres degraded, %d artists available - %v", len(artists), err)
			degraded("artists")
		}

		if artists != nil {
			data.artists = artists
		}

		return nil
	})

	g.Go(func() error {
		features, err := a.catalog.AudioFeaturesByIds(ctx, appmodels.TrackIds(tracks))

		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			log.Warningf("Audio features degraded, %d records available - %v", len(features), err)
			degraded("audio_features")
		}

		if features != nil {
			data.features = features
		}

		if len(data.features) == 0 {
			log.Info("No audio features available, mood and energy come from the dominant genre")
		}

		return nil
	})

	if listening {
		g.Go(func() error {
			data.topTracks, topErr = a.catalog.TopTracks(ctx, a.options.ListeningLimit)

			if topErr != nil && ctx.Err() != nil {
				return topErr
			}

			return nil
		})

		g.Go(func() error {
			data.recentlyPlayed, recentErr = a.catalog.RecentlyPlayed(ctx, a.options.ListeningLimit)

			if recentErr != nil && ctx.Err() != nil {
				return recentErr
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return data, err
	}

	data.listeningAvailable = listening && topErr == nil && recentErr == nil

	if listening && !data.listeningAvailable {
		log.Warningf("Listening estimate skipped - top tracks: %v, recently played: %v", topErr, recentErr)
		degraded("listening")
	}

	return data, nil
}

func degraded(source string) {
	datadog.Increment(1, datadog.ProfileDegraded, datadog.DegradedSourceTag.Tag(source))
}
