package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/infection/pkg/observability"
)

// instrument logs every request and reports it to the HTTP hooks.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			route := routePattern(r)
			if rec := recover(); rec != nil {
				err := errInternal(rec)
				hooks.OnError(r.Context(), r.Method, route, err)
				s.logger.Error("handler panic", "method", r.Method, "path", r.URL.Path, "err", err)
				if ww.Status() == 0 {
					writeError(ww, http.StatusInternalServerError, err)
				}
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			dur := time.Since(start)
			hooks.OnResponse(r.Context(), r.Method, route, status, dur)
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", dur)
		}()

		next.ServeHTTP(ww, r)
	})
}

// routePattern returns the chi route that served r, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
