package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playlist-insights/api"
	"github.com/playlist-insights/datadog"
	"github.com/playlist-insights/env"
	"github.com/playlist-insights/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve playlist profiles over http",
	Long: `Starts the http api:

  GET  /health
  GET  /playlists/{playlistId}/profile?maxTracks=500&refresh=true
  POST /profiles  {"playlistIds": ["..."], "maxTracks": 500}

Requests authenticate with "Authorization: Bearer <token>", or fall back to the
configured application credentials.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "port to listen on")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	settings := env.Load(viper.GetViper())

	if settings.StatsdEnabled {
		datadog.Initialise(settings.StatsdAddress)
		defer datadog.Close()
	}

	if settings.TracingEnabled {
		tracer.Start(
			tracer.WithServiceName(settings.ServiceName),
			tracer.WithGlobalTag("env", env.GetEnv()),
		)
		defer tracer.Stop()
	}

	deps, err := newServices(settings)

	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", settings.Port),
		Handler: api.NewHandler(deps.profileServer(), settings.AllowedOrigins),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shut down server gracefully ", err)
		}
	}()

	logger.Logger.Infof("Starting server on port %d (env %q)", settings.Port, env.GetEnv())

	err = server.ListenAndServe()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Logger.Error("Failed to start server ", err)
		return err
	}

	return nil
}
