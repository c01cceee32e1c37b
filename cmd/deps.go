package cmd

import (
	"context"

	"github.com/playlist-insights/api"
	"github.com/playlist-insights/app"
	"github.com/playlist-insights/appmodels"
	"github.com/playlist-insights/env"
	"github.com/playlist-insights/logger"
	"github.com/playlist-insights/musicclient"
	"github.com/playlist-insights/musicclient/clientcommon"
	spotifyclient "github.com/playlist-insights/musicclient/spotify"
	"github.com/playlist-insights/recommend"
)

// services holds everything built from the settings, shared by the commands.
type services struct {
	settings    env.Settings
	provider    *musicclient.Provider
	recommender *recommend.Engine
	cache       *app.ProfileCache
	options     app.Options
}

func gatewayConfig(settings env.Settings) spotifyclient.Config {
	return spotifyclient.Config{
		BaseUrl:        settings.SpotifyBaseUrl,
		RequestTimeout: settings.RequestTimeout,
		PageSize:       settings.PageSize,
		ChunkDelay:     settings.ChunkDelay,
		Backoff: clientcommon.BackoffPolicy{
			Base:       settings.BackoffBase,
			Max:        settings.BackoffMax,
			Jitter:     settings.Jitter,
			MaxRetries: settings.MaxRetries,
		},
	}
}

func analyzerOptions(settings env.Settings) app.Options {
	options := app.DefaultOptions()
	options.MaxTracks = settings.MaxTracks
	options.AuxiliaryConcurrency = settings.AuxiliaryConcurrency
	options.PlaylistConcurrency = settings.PlaylistConcurrency
	options.Timeout = settings.AnalysisTimeout
	options.ListeningLimit = settings.ListeningLimit
	options.Listening = appmodels.ListeningHeuristics{
		BaselinePlays:   settings.BaselinePlays,
		TopTrackPlays:   settings.TopTrackPlays,
		RecentPlayPlays: settings.RecentPlayPlays,
	}

	return options
}

func genericCredentials(settings env.Settings) []spotifyclient.Credential {
	credentials, err := spotifyclient.ParseClientsCredentials(settings.SpotifyGenericCredentials)

	if err != nil {
		logger.Logger.Error("Failed to parse the generic client credentials, ignoring them ", err)
	}

	if settings.SpotifyClientId != "" && settings.SpotifyClientSecret != "" {
		credentials = append(credentials, spotifyclient.Credential{
			ClientId:     settings.SpotifyClientId,
			ClientSecret: settings.SpotifyClientSecret,
		})
	}

	return credentials
}

func newRecommender(settings env.Settings) (*recommend.Engine, error) {
	if settings.CatalogPath == "" {
		return recommend.NewDefaultEngine()
	}

	catalog, err := recommend.LoadCatalogFile(settings.CatalogPath)

	if err != nil {
		return nil, err
	}

	logger.Logger.Infof("Using recommendation catalog %s", settings.CatalogPath)

	return recommend.NewEngine(catalog), nil
}

func newServices(settings env.Settings) (*services, error) {
	clock := clientcommon.RealClock()
	generic := spotifyclient.NewGenericClientPool(genericCredentials(settings), settings.RequestsPerSecond,
		settings.Burst, clock)

	logger.Logger.Infof("Configured %d generic spotify clients", generic.Size())

	provider, err := musicclient.NewProvider(musicclient.ProviderOptions{
		Config:            gatewayConfig(settings),
		RequestsPerSecond: settings.RequestsPerSecond,
		Burst:             settings.Burst,
		Clock:             clock,
		Generic:           generic,
	})

	if err != nil {
		return nil, err
	}

	recommender, err := newRecommender(settings)

	if err != nil {
		return nil, err
	}

	cache, err := app.NewProfileCache(settings.CacheSize, settings.CacheTtl)

	if err != nil {
		return nil, err
	}

	return &services{
		settings:    settings,
		provider:    provider,
		recommender: recommender,
		cache:       cache,
		options:     analyzerOptions(settings),
	}, nil
}

func (s *services) catalogFor(ctx context.Context, credential clientcommon.Credential) (app.Catalog, string, error) {
	gateway, namespace, err := s.provider.Gateway(ctx, credential)

	if err != nil {
		return nil, "", err
	}

	return gateway, namespace, nil
}

func (s *services) profileServer() *api.ProfileServer {
	return api.NewProfileServer(s.catalogFor, s.recommender, s.cache, s.options)
}

func (s *services) analyzer(ctx context.Context, credential clientcommon.Credential) (*app.Analyzer, error) {
	catalog, namespace, err := s.catalogFor(ctx, credential)

	if err != nil {
		return nil, err
	}

	options := s.options
	options.CacheNamespace = namespace

	return app.NewAnalyzer(catalog, s.recommender, s.cache, options), nil
}
