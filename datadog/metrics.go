package datadog

import (
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/playlist-insights/logger"
)

var StatsdClient *statsd.Client

func Initialise(address string) {
	statsdClient, err := statsd.New(address)

	if err != nil {
		logger.Logger.Errorf("Failed to start statsd client on %s, metrics disabled %v", address, err)
		return
	}

	StatsdClient = statsdClient
}

func Close() {
	if StatsdClient == nil {
		return
	}

	if err := StatsdClient.Close(); err != nil {
		logger.Logger.Warningf("Failed to close statsd client %v", err)
	}

	StatsdClient = nil
}

func Increment(count int, metric string, tags ...string) {
	if StatsdClient == nil {
		return
	}

	err := StatsdClient.Count(metric, int64(count), tags, 1)

	if err != nil {
		logger.Logger.Errorf("Failed to increment metric %s with tags %s by %d %v", metric, tags, count, err)
	}
}

func Gauge(value int, metric string, tags ...string) {
	if StatsdClient == nil {
		return
	}

	err := StatsdClient.Gauge(metric, float64(value), tags, 1)

	if err != nil {
		logger.Logger.Errorf("Failed to send gauge value %d to %s with tags %s %v", value, metric, tags, err)
	}
}

func Timing(value time.Duration, metric string, tags ...string) {
	if StatsdClient == nil {
		return
	}

	err := StatsdClient.Timing(metric, value, tags, 1)

	if err != nil {
		logger.Logger.Errorf("Failed to send timing %s to %s with tags %s %v", value, metric, tags, err)
	}
}
