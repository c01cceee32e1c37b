package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const RequestIdHeader = "X-Request-Id"

type requestIdKey struct{}

// RequestIdMiddleware tags every request with an id, reusing the caller's one when present.
func RequestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIdHeader)

		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIdHeader, id)
		ctx := context.WithValue(r.Context(), requestIdKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestId(r *http.Request) string {
	id, _ := r.Context().Value(requestIdKey{}).(string)
	return id
}
