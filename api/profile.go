package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/playlist-insights/app"
	"github.com/playlist-insights/httputils"
	"github.com/playlist-insights/logger"
	"github.com/playlist-insights/musicclient/clientcommon"
)

const maxBatchPlaylists = 20
const maxTracksLimit = 10000

var errInvalidMaxTracks = errors.New("maxTracks must be a positive integer")
var errInvalidBatch = errors.New("playlistIds must contain between 1 and 20 ids")

// CatalogFunc returns the catalog to use for a credential and the namespace of its cached profiles.
type CatalogFunc func(ctx context.Context, credential clientcommon.Credential) (app.Catalog, string, error)

type ProfileServer struct {
	catalogFor  CatalogFunc
	recommender app.Recommender
	cache       *app.ProfileCache
	options     app.Options
}

func NewProfileServer(catalogFor CatalogFunc, recommender app.Recommender, cache *app.ProfileCache,
	options app.Options) *ProfileServer {
	return &ProfileServer{
		catalogFor:  catalogFor,
		recommender: recommender,
		cache:       cache,
		options:     options,
	}
}

type batchRequest struct {
	PlaylistIds []string `json:"playlistIds"`
	MaxTracks   int      `json:"maxTracks"`
	Refresh     bool     `json:"refresh"`
}

type batchResponse struct {
	Results []app.Result `json:"results"`
}

func (s *ProfileServer) PlaylistProfileHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {

	case http.MethodGet:
		s.GetPlaylistProfile(w, r)
	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}

func (s *ProfileServer) ProfilesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {

	case http.MethodPost:
		s.CreateProfiles(w, r)
	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}

func (s *ProfileServer) GetPlaylistProfile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playlistId := vars["playlistId"]

	maxTracks, err := parseMaxTracks(r.URL.Query().Get("maxTracks"))

	if err != nil {
		handleError(err, w, r)
		return
	}

	analyzer, err := s.analyzerFor(r)

	if err != nil {
		handleError(err, w, r)
		return
	}

	logger.WithRequest(requestId(r)).Infof("Profile requested for playlist %s", playlistId)

	profile, err := analyzer.Analyze(r.Context(), app.Request{
		PlaylistId: playlistId,
		MaxTracks:  maxTracks,
		Refresh:    r.URL.Query().Get("refresh") == "true",
	})

	if err != nil {
		handleError(err, w, r)
		return
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, profile)
}

func (s *ProfileServer) CreateProfiles(w http.ResponseWriter, r *http.Request) {
	var body batchRequest

	if err := httputils.DeserialiseBody(r, &body); err != nil {
		httputils.SendError(r.Context(), w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	if len(body.PlaylistIds) == 0 || len(body.PlaylistIds) > maxBatchPlaylists {
		handleError(errInvalidBatch, w, r)
		return
	}

	if body.MaxTracks < 0 || body.MaxTracks > maxTracksLimit {
		handleError(errInvalidMaxTracks, w, r)
		return
	}

	analyzer, err := s.analyzerFor(r)

	if err != nil {
		handleError(err, w, r)
		return
	}

	logger.WithRequest(requestId(r)).Infof("Profiles requested for %d playlists", len(body.PlaylistIds))

	results := analyzer.AnalyzeMany(r.Context(), body.PlaylistIds, body.MaxTracks, body.Refresh)

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, batchResponse{Results: results})
}

func (s *ProfileServer) analyzerFor(r *http.Request) (*app.Analyzer, error) {
	// without a header the catalog may still fall back to application credentials
	credential, _ := clientcommon.CredentialFromRequest(r)

	catalog, namespace, err := s.catalogFor(r.Context(), credential)

	if err != nil {
		return nil, err
	}

	options := s.options
	options.CacheNamespace = namespace

	return app.NewAnalyzer(catalog, s.recommender, s.cache, options), nil
}

func parseMaxTracks(value string) (int, error) {
	if value == "" {
		return 0, nil
	}

	maxTracks, err := strconv.Atoi(value)

	if err != nil || maxTracks <= 0 || maxTracks > maxTracksLimit {
		return 0, errInvalidMaxTracks
	}

	return maxTracks, nil
}

func handleError(err error, w http.ResponseWriter, r *http.Request) {
	logger.
		WithRequest(requestId(r)).
		WithError(err).
		Warning("Handling error")

	ctx := r.Context()
	var upstreamErr *clientcommon.UpstreamError

	if errors.Is(err, clientcommon.ErrMissingCredential) {
		httputils.AuthenticationError(w, r)

	} else if errors.Is(err, errInvalidMaxTracks) || errors.Is(err, errInvalidBatch) {
		httputils.SendError(ctx, w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())

	} else if errors.Is(err, app.ErrEmptyPlaylist) {
		httputils.SendError(ctx, w, http.StatusUnprocessableEntity, app.CodeEmptyPlaylist, "The playlist has no tracks")

	} else if errors.As(err, &upstreamErr) && upstreamErr.StatusCode == http.StatusNotFound {
		httputils.SendError(ctx, w, http.StatusNotFound, "PLAYLIST_NOT_FOUND", upstreamErr.Message)

	} else if errors.As(err, &upstreamErr) && upstreamErr.StatusCode == http.StatusUnauthorized {
		httputils.SendError(ctx, w, http.StatusUnauthorized, "UPSTREAM_UNAUTHORIZED", upstreamErr.Message)

	} else {
		code := app.ErrorCode(err)
		httputils.SendError(ctx, w, statusForCode(code), code, "")
	}
}

func statusForCode(code string) int {
	switch code {
	case app.CodeAccessRestricted:
		return http.StatusForbidden
	case app.CodeRateLimited:
		return http.StatusTooManyRequests
	case app.CodeUpstreamUnavailable:
		return http.StatusBadGateway
	case app.CodeTimeout:
		return http.StatusGatewayTimeout
	case app.CodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
