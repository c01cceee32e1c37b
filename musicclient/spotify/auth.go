package spotify

import (
	"context"
	"net/http"

	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// NewUserHttpClient wraps a user access token obtained by the dashboard's login flow.
// The token is not refreshed here, an expired one surfaces as a 401 from the upstream.
func NewUserHttpClient(ctx context.Context, accessToken string) *http.Client {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	return oauth2.NewClient(ctx, tokenSource)
}

// NewAppHttpClient authenticates as the application with the client credentials flow.
// Such a client reads public playlists, artists and audio features but no listening history.
func NewAppHttpClient(ctx context.Context, clientId string, clientSecret string) *http.Client {
	config := &clientcredentials.Config{
		ClientID:     clientId,
		ClientSecret: clientSecret,
		TokenURL:     spotify.TokenURL,
	}

	return config.Client(ctx)
}
