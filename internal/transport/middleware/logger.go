package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/heartmarshall/atelier-bot/pkg/ctxutil"
)

// Logger logs each request with method, path, status, duration and request
// id. Probe hits are logged at Debug.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", redactPath(r.URL.Path)),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			}
			if userID, ok := ctxutil.UserIDFromCtx(r.Context()); ok {
				attrs = append(attrs, slog.Int64("user_id", userID))
			}

			level := slog.LevelInfo
			switch {
			case sw.status >= 500:
				level = slog.LevelError
			case isProbe(r.URL.Path):
				level = slog.LevelDebug
			}
			logger.LogAttrs(r.Context(), level, "http.request", attrs...)
		})
	}
}

func isProbe(path string) bool {
	switch path {
	case "/live", "/ready", "/health":
		return true
	}
	return false
}

// redactPath hides the webhook secret path segment.
func redactPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "/webhook/"); ok && rest != "" {
		return "/webhook/***"
	}
	return path
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}
