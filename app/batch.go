package app

import (
	"context"

	"github.com/playlist-insights/appmodels"
	"golang.org/x/sync/errgroup"
)

type Result struct {
	PlaylistId string                    `json:"playlistId"`
	Profile    *appmodels.MusicalProfile `json:"profile,omitempty"`
	Error      string                    `json:"error,omitempty"`
	Code       string                    `json:"code,omitempty"`
	Err        error                     `json:"-"`
}

// AnalyzeMany analyzes the playlists in parallel, at most PlaylistConcurrency at a time.
// Results keep the order of ids. A failed playlist never stops the others.
func (a *Analyzer) AnalyzeMany(ctx context.Context, ids []string, maxTracks int, refresh bool) []Result {
	results := make([]Result, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(a.options.PlaylistConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			profile, err := a.Analyze(ctx, Request{PlaylistId: id, MaxTracks: maxTracks, Refresh: refresh})
			result := Result{PlaylistId: id}

			if err != nil {
				result.Err = err
				result.Error = err.Error()
				result.Code = ErrorCode(err)
			} else {
				result.Profile = &profile
			}

			results[i] = result
			return nil
		})
	}

	_ = g.Wait()

	return results
}
