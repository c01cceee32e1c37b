package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/playlist-insights/app"
	"github.com/playlist-insights/env"
	"github.com/playlist-insights/musicclient/clientcommon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <playlistId>...",
	Short: "Print the musical profile of one or more playlists",
	Long: `Analyzes the given playlists and prints their profiles as json.

Examples:
  playlist-insights analyze 37i9dQZF1DXcBWIGoYBM5M
  playlist-insights analyze 37i9dQZF1DXcBWIGoYBM5M 37i9dQZF1DX0XUsuxWHRQd --max-tracks 300
  PLAYLIST_INSIGHTS_SPOTIFY_ACCESS_TOKEN=... playlist-insights analyze 37i9dQZF1DXcBWIGoYBM5M`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	maxTracks   int
	accessToken string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&maxTracks, "max-tracks", 0, "maximum number of tracks read per playlist (default from config)")
	analyzeCmd.Flags().StringVar(&accessToken, "token", "", "user access token, falls back to spotify.access_token then to the app credentials")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	settings := env.Load(viper.GetViper())

	deps, err := newServices(settings)

	if err != nil {
		return err
	}

	token := accessToken
	if token == "" {
		token = settings.SpotifyAccessToken
	}

	credential := clientcommon.Credential{Token: token, UserScoped: token != ""}
	ctx := context.Background()

	analyzer, err := deps.analyzer(ctx, credential)

	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if len(args) == 1 {
		profile, err := analyzer.Analyze(ctx, app.Request{PlaylistId: args[0], MaxTracks: maxTracks})

		if err != nil {
			return err
		}

		return encoder.Encode(profile)
	}

	results := analyzer.AnalyzeMany(ctx, args, maxTracks, false)

	return encoder.Encode(map[string]interface{}{"results": results})
}
