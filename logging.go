package route

import (
	"log/slog"
	"time"
)

// Logged returns a decoration that logs each request using the provided
// slog.Logger. Responses converted from an error are logged as failures with
// the error attached. Install it with Around to log binding and condition
// failures as well.
func Logged(logger *slog.Logger) Decoration {
	return func(r *Request, next Next) (Response, error) {
		start := time.Now()
		resp, err := next()

		attrs := []slog.Attr{
			slog.String("method", r.Method()),
			slog.String("path", r.Path()),
			slog.String("pattern", r.Pattern()),
			slog.Duration("latency", time.Since(start)),
		}
		if remote := r.RemoteAddr(); remote != "" {
			attrs = append(attrs, slog.String("remote", remote))
		}
		if id := GetRequestID(r.Context()); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}

		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.LogAttrs(r.Context(), slog.LevelWarn, "request failed", attrs...)
			return nil, err
		}

		attrs = append(attrs, slog.Int("status", resp.StatusCode()))
		level, msg := slog.LevelInfo, "request"
		if failure := r.Err(); failure != nil {
			attrs = append(attrs, slog.String("error", failure.Error()))
			level, msg = slog.LevelWarn, "request failed"
		}
		if resp.StatusCode() >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(r.Context(), level, msg, attrs...)
		return resp, nil
	}
}
