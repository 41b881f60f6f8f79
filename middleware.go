package route

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Middleware is the standard net/http middleware signature. It runs outside
// the dispatcher, before any endpoint is matched.
type Middleware func(next http.Handler) http.Handler

// Recovery returns middleware that recovers panics raised outside the
// dispatcher, such as in other middleware, and responds with a 500 problem.
// Panics inside endpoints are handled by the error pipeline.
func Recovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					status := http.StatusInternalServerError
					w.Header().Set("Content-Type", problemContentType)
					w.WriteHeader(status)
					//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
					json.NewEncoder(w).Encode(Problem(status, http.StatusText(status)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
