package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/api/dto"
)

// Logger writes one completion line per request. skipCache is logged on
// the remote-read endpoints because a cache bypass explains a slow
// response better than the duration alone.
func Logger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				event := log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Str("request_id", chimiddleware.GetReqID(r.Context()))
				if r.URL.Query().Get("skipCache") == "true" {
					event = event.Bool("skip_cache", true)
				}
				event.Msg("Request completed")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// Recoverer turns a handler panic into the same JSON error envelope every
// other failure path answers with.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("request_id", chimiddleware.GetReqID(r.Context())).
						Msg("Panic recovered")

					dto.ErrorResponse(w, http.StatusInternalServerError, "internal error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
