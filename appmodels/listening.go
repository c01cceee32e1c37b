package appmodels

// ListeningHeuristics are tunable weights used to estimate play counts from catalog co-occurrence.
// They are not derived from real telemetry and the resulting numbers are estimates only.
type ListeningHeuristics struct {
	BaselinePlays   int // every track of the playlist
	TopTrackPlays   int // a playlist track that is also one of the user's top tracks
	RecentPlayPlays int // each appearance of a playlist track in the recently played history
}

var DefaultListeningHeuristics = ListeningHeuristics{
	BaselinePlays:   1,
	TopTrackPlays:   8,
	RecentPlayPlays: 1,
}

// ListeningEstimate is always flagged as heuristic in the output.
type ListeningEstimate struct {
	EstimatedPlays           int  `json:"estimatedPlays"`
	TopTracksInPlaylist      int  `json:"topTracksInPlaylist"`
	RecentlyPlayedInPlaylist int  `json:"recentlyPlayedInPlaylist"`
	Heuristic                bool `json:"heuristic"`
}

// EstimateListening weighs the playlist tracks found in the user's top tracks and recently played history.
// recentlyPlayed may contain the same id several times, one per play.
func EstimateListening(tracks []Track, topTrackIds []string, recentlyPlayed []string, weights ListeningHeuristics) ListeningEstimate {
	topTracks := make(map[string]struct{}, len(topTrackIds))
	for _, id := range topTrackIds {
		topTracks[id] = struct{}{}
	}

	recentPlays := make(map[string]int)
	for _, id := range recentlyPlayed {
		recentPlays[id] += 1
	}

	estimate := ListeningEstimate{Heuristic: true}
	trackSeen := make(map[string]struct{})

	for _, track := range tracks {
		if _, seen := trackSeen[track.Id]; seen {
			continue
		}
		trackSeen[track.Id] = struct{}{}

		plays := weights.BaselinePlays

		if _, ok := topTracks[track.Id]; ok {
			estimate.TopTracksInPlaylist++
			plays += weights.TopTrackPlays
		}

		if count := recentPlays[track.Id]; count > 0 {
			estimate.RecentlyPlayedInPlaylist++
			plays += count * weights.RecentPlayPlays
		}

		estimate.EstimatedPlays += plays
	}

	return estimate
}
