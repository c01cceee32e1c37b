package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/playlist-insights/logger"
	"github.com/rs/cors"
)

func NewRouter(profiles *ProfileServer) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestIdMiddleware)

	r.HandleFunc("/health", Health)
	r.HandleFunc("/playlists/{playlistId}/profile", profiles.PlaylistProfileHandler)
	r.HandleFunc("/profiles", profiles.ProfilesHandler)

	return r
}

// NewHandler wraps the router with cors, access logs and panic recovery.
func NewHandler(profiles *ProfileServer, allowedOrigins []string) http.Handler {
	r := NewRouter(profiles)

	handler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedHeaders:   []string{"Authorization", "Content-Type", RequestIdHeader},
		AllowCredentials: true,
	}).Handler(r)

	handler = handlers.CombinedLoggingHandler(logger.Logger.Writer(), handler)

	return handlers.RecoveryHandler(handlers.RecoveryLogger(logger.Logger), handlers.PrintRecoveryStack(true))(handler)
}
