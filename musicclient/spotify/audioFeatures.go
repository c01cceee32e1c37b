package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/playlist-insights/appmodels"
	"github.com/playlist-insights/datadog"
	"github.com/playlist-insights/logger"
	"github.com/playlist-insights/musicclient/clientcommon"
	"github.com/zmb3/spotify"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const maxAudioFeaturePerApiCall = 100

type audioFeaturesResponse struct {
	AudioFeatures []*spotify.AudioFeatures `json:"audio_features"`
}

// AudioFeaturesByIds fetches the audio features once per distinct track id, by chunks of
// maxAudioFeaturePerApiCall. Access to audio features is restricted for many credentials: when the first
// chunk is refused the result is empty and no error is returned. A later refusal keeps what was
// collected and is reported with the other chunk errors.
func (g *Gateway) AudioFeaturesByIds(ctx context.Context, ids []string) (map[string]appmodels.AudioFeature, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "spotify.audio_features")
	defer span.Finish()

	trackIds := uniqueIds(ids)
	features := make(map[string]appmodels.AudioFeature, len(trackIds))

	logger.Logger.Infof("Fetching audio features for %d tracks", len(trackIds))

	var errs []error

	for i, part := range chunks(trackIds, maxAudioFeaturePerApiCall) {
		if i > 0 {
			if err := g.clock.Sleep(ctx, g.config.ChunkDelay); err != nil {
				return features, err
			}
		}

		body, err := g.fetcher.Get(ctx, "/audio-features", map[string]string{"ids": strings.Join(part, ",")},
			datadog.RequestTypeAudioFeatures)

		// only a refusal of the first chunk means the credential has no access at all
		if i == 0 && errors.Is(err, clientcommon.ErrAccessRestricted) {
			logger.Logger.Infof("Audio features are not available for this credential - %v", err)
			return map[string]appmodels.AudioFeature{}, nil
		}

		if err != nil {
			if ctx.Err() != nil {
				span.Finish(tracer.WithError(err))
				return features, err
			}

			logger.Logger.Errorf("Failed to get audio features chunk %d - %v", i, err)
			errs = append(errs, err)
			continue
		}

		var response audioFeaturesResponse

		if err := json.Unmarshal(body, &response); err != nil {
			logger.Logger.Errorf("Failed to decode audio features chunk %d - %v", i, err)
			errs = append(errs, fmt.Errorf("spotify client: decoding audio features: %w", err))
			continue
		}

		for _, feature := range response.AudioFeatures {
			// tracks without analysis come back as null
			if feature == nil || feature.ID == "" {
				continue
			}

			features[string(feature.ID)] = toAudioFeature(feature)
		}

		logger.Logger.Infof("Fetched audio features for %d tracks successfully", len(part))
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		span.Finish(tracer.WithError(err))
		return features, err
	}

	return features, nil
}

func toAudioFeature(feature *spotify.AudioFeatures) appmodels.AudioFeature {
	return appmodels.AudioFeature{
		TrackId:          string(feature.ID),
		Energy:           float64(feature.Energy),
		Danceability:     float64(feature.Danceability),
		Valence:          float64(feature.Valence),
		Acousticness:     float64(feature.Acousticness),
		Instrumentalness: float64(feature.Instrumentalness),
		Tempo:            float64(feature.Tempo),
	}
}
