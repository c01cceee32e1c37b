package datadog

import "fmt"

type Tag struct {
	Key string
}

func (t Tag) Tag(value string) string {
	return fmt.Sprintf("%s:%s", t.Key, value)
}

func (t Tag) TagBool(value bool) string {
	return fmt.Sprintf("%s:%t", t.Key, value)
}

func (t Tag) TagInt(value int) string {
	return fmt.Sprintf("%s:%d", t.Key, value)
}

// For profile analysis
const ProfileAnalysisCount = "profile.analysis.count"
const ProfileAnalysisFailed = "profile.analysis.failed"
const ProfileAnalysisTime = "profile.analysis.time"
const ProfileTracks = "profile.tracks.count"
const ProfileDegraded = "profile.analysis.degraded"
const ProfileCacheHit = "profile.cache.hit"

var MoodTag = Tag{"mood"}
var DegradedSourceTag = Tag{"source"}
var ErrorCodeTag = Tag{"error_code"}

// For upstream api requests
const ApiRequests = "api.requests"
const ApiRateLimited = "api.rate_limited"
const ApiRetries = "api.retries"

const SpotifyProvider = "spotify"

var Provider = Tag{"provider"}
var RequestType = Tag{"request_type"}
var Authenticated = Tag{"authenticated"}
var Success = Tag{"success"}
var StatusCode = Tag{"status_code"}

const RequestTypePlaylist = "playlist"
const RequestTypePlaylistSongs = "playlist_songs"
const RequestTypeArtists = "artists"
const RequestTypeAudioFeatures = "audio_features"
const RequestTypeRecentlyPlayed = "recently_played"
const RequestTypeTopTracks = "top_tracks"
