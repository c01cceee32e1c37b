package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.StandardLogger()

func init() {
	Logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: false,
		FullTimestamp: true,
	})
	Logger.SetOutput(os.Stdout)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetReportCaller(false)
}

// Configure applies the level and formatter chosen in the settings. An unknown level keeps Info.
func Configure(level string, json bool) {
	if json {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	parsed, err := logrus.ParseLevel(level)

	if err != nil {
		Logger.Warningf("Unknown log level %q, keeping %s", level, Logger.GetLevel())
		return
	}

	Logger.SetLevel(parsed)
}

func WithPlaylist(playlistId string) *logrus.Entry {
	return Logger.WithField("playlist_id", playlistId)
}

func WithRequest(requestId string) *logrus.Entry {
	return Logger.WithField("request_id", requestId)
}

func WithEndpoint(endpoint string) *logrus.Entry {
	return Logger.WithField("endpoint", endpoint)
}
