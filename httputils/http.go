package httputils

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/playlist-insights/logger"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Do not forget v needs to be a reference to the object for the serialisation to work
func DeserialiseBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	err := decoder.Decode(v)

	if err != nil {
		logger.Logger.Warning("Failed to deserialise body ", err)
		return err
	}

	return nil
}

func SendJson(w http.ResponseWriter, v interface{}) {
	SendJsonWithCtx(context.Background(), w, http.StatusOK, v)
}

func SendJsonWithCtx(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	span, _ := tracer.StartSpanFromContext(ctx, "json.serialise")
	defer span.Finish()

	jsonValue, err := json.Marshal(v)

	if err != nil {
		span.Finish(tracer.WithError(err))
		http.Error(w, "Failed to serialise struct", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(jsonValue)

	if err != nil {
		span.Finish(tracer.WithError(err))
		logger.Logger.Error("Failed to write json response ", err)
	}
}

// SendError answers with a json body carrying a machine readable code.
func SendError(ctx context.Context, w http.ResponseWriter, status int, code string, message string) {
	SendJsonWithCtx(ctx, w, status, ErrorBody{Error: code, Message: message})
}

func AuthenticationError(w http.ResponseWriter, r *http.Request) {
	SendError(r.Context(), w, http.StatusUnauthorized, "UNAUTHORIZED",
		"A bearer token for the music service is required")
}
