package api

import (
	"net/http"

	"github.com/playlist-insights/env"
	"github.com/playlist-insights/httputils"
)

type healthResponse struct {
	Status string `json:"status"`
	Env    string `json:"env"`
}

func Health(w http.ResponseWriter, r *http.Request) {
	httputils.SendJson(w, healthResponse{Status: "ok", Env: env.GetEnv()})
}
