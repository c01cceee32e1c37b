package clientcommon

import "github.com/playlist-insights/datadog"

func SendRequestMetric(requestType string, authenticated bool, statusCode int, err error) {
	success := err == nil

	datadog.Increment(1, datadog.ApiRequests,
		datadog.Provider.Tag(datadog.SpotifyProvider),
		datadog.RequestType.Tag(requestType),
		datadog.Authenticated.TagBool(authenticated),
		datadog.StatusCode.TagInt(statusCode),
		datadog.Success.TagBool(success),
	)
}

func SendRateLimitMetric(requestType string) {
	datadog.Increment(1, datadog.ApiRateLimited,
		datadog.Provider.Tag(datadog.SpotifyProvider),
		datadog.RequestType.Tag(requestType),
	)
}

func SendRetryMetric(requestType string, statusCode int) {
	datadog.Increment(1, datadog.ApiRetries,
		datadog.Provider.Tag(datadog.SpotifyProvider),
		datadog.RequestType.Tag(requestType),
		datadog.StatusCode.TagInt(statusCode),
	)
}
