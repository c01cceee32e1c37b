package env

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "PLAYLIST_INSIGHTS"

// Settings is everything configurable, read from defaults, config file and environment.
type Settings struct {
	LogLevel string
	LogJson  bool

	SpotifyBaseUrl            string
	SpotifyAccessToken        string
	SpotifyClientId           string
	SpotifyClientSecret       string
	SpotifyGenericCredentials string

	PageSize       int
	MaxTracks      int
	RequestTimeout time.Duration
	ChunkDelay     time.Duration

	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Jitter      time.Duration

	RequestsPerSecond float64
	Burst             int

	AuxiliaryConcurrency int
	PlaylistConcurrency  int
	AnalysisTimeout      time.Duration

	CacheSize int
	CacheTtl  time.Duration

	ListeningLimit  int
	BaselinePlays   int
	TopTrackPlays   int
	RecentPlayPlays int

	CatalogPath string

	StatsdEnabled  bool
	StatsdAddress  string
	TracingEnabled bool
	ServiceName    string

	Port           int
	AllowedOrigins []string
}

// SetDefaults registers every key with its default value and binds the legacy variable names.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("spotify.base_url", "https://api.spotify.com/v1")
	v.SetDefault("spotify.access_token", "")
	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.generic_credentials", "")
	_ = v.BindEnv("spotify.client_id", EnvPrefix+"_SPOTIFY_CLIENT_ID", "CLIENT_ID")
	_ = v.BindEnv("spotify.client_secret", EnvPrefix+"_SPOTIFY_CLIENT_SECRET", "CLIENT_SECRET_KEY")
	_ = v.BindEnv("spotify.generic_credentials", EnvPrefix+"_SPOTIFY_GENERIC_CREDENTIALS",
		"SPOTIFY_GENERIC_CLIENT_CREDENTIALS")

	v.SetDefault("pagination.page_size", 100)
	v.SetDefault("pagination.max_tracks", 2000)
	v.SetDefault("http.request_timeout", 10*time.Second)
	v.SetDefault("batch.chunk_delay", 100*time.Millisecond)

	v.SetDefault("retry.max_retries", 4)
	v.SetDefault("retry.backoff_base", 500*time.Millisecond)
	v.SetDefault("retry.backoff_max", 30*time.Second)
	v.SetDefault("retry.jitter", 100*time.Millisecond)

	v.SetDefault("ratelimit.requests_per_second", 10.0)
	v.SetDefault("ratelimit.burst", 5)

	v.SetDefault("analysis.auxiliary_concurrency", 3)
	v.SetDefault("analysis.playlist_concurrency", 2)
	v.SetDefault("analysis.timeout", 2*time.Minute)

	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("listening.limit", 50)
	v.SetDefault("listening.baseline_plays", 1)
	v.SetDefault("listening.top_track_plays", 8)
	v.SetDefault("listening.recent_play_plays", 1)

	v.SetDefault("recommend.catalog_path", "")

	v.SetDefault("datadog.statsd_enabled", false)
	v.SetDefault("datadog.statsd_address", "127.0.0.1:8125")
	v.SetDefault("datadog.tracing_enabled", false)
	v.SetDefault("datadog.service_name", "playlist-insights")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:8080", "http://localhost:3000"})
}

func Load(v *viper.Viper) Settings {
	return Settings{
		LogLevel: v.GetString("log.level"),
		LogJson:  v.GetBool("log.json"),

		SpotifyBaseUrl:            v.GetString("spotify.base_url"),
		SpotifyAccessToken:        v.GetString("spotify.access_token"),
		SpotifyClientId:           v.GetString("spotify.client_id"),
		SpotifyClientSecret:       v.GetString("spotify.client_secret"),
		SpotifyGenericCredentials: v.GetString("spotify.generic_credentials"),

		PageSize:       v.GetInt("pagination.page_size"),
		MaxTracks:      v.GetInt("pagination.max_tracks"),
		RequestTimeout: v.GetDuration("http.request_timeout"),
		ChunkDelay:     v.GetDuration("batch.chunk_delay"),

		MaxRetries:  v.GetInt("retry.max_retries"),
		BackoffBase: v.GetDuration("retry.backoff_base"),
		BackoffMax:  v.GetDuration("retry.backoff_max"),
		Jitter:      v.GetDuration("retry.jitter"),

		RequestsPerSecond: v.GetFloat64("ratelimit.requests_per_second"),
		Burst:             v.GetInt("ratelimit.burst"),

		AuxiliaryConcurrency: v.GetInt("analysis.auxiliary_concurrency"),
		PlaylistConcurrency:  v.GetInt("analysis.playlist_concurrency"),
		AnalysisTimeout:      v.GetDuration("analysis.timeout"),

		CacheSize: v.GetInt("cache.size"),
		CacheTtl:  v.GetDuration("cache.ttl"),

		ListeningLimit:  v.GetInt("listening.limit"),
		BaselinePlays:   v.GetInt("listening.baseline_plays"),
		TopTrackPlays:   v.GetInt("listening.top_track_plays"),
		RecentPlayPlays: v.GetInt("listening.recent_play_plays"),

		CatalogPath: v.GetString("recommend.catalog_path"),

		StatsdEnabled:  v.GetBool("datadog.statsd_enabled"),
		StatsdAddress:  v.GetString("datadog.statsd_address"),
		TracingEnabled: v.GetBool("datadog.tracing_enabled"),
		ServiceName:    v.GetString("datadog.service_name"),

		Port:           v.GetInt("server.port"),
		AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
	}
}
