package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/chirp/internal/client"
	"github.com/devilmonastery/chirp/internal/pkg/logger"
	"github.com/devilmonastery/chirp/internal/pkg/metrics"
)

// RequestIDHeader carries the request ID to and from clients
const RequestIDHeader = "X-Request-ID"

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// LogRequest logs each request and records HTTP metrics. The request ID is
// taken from the X-Request-ID header or generated, echoed back and forwarded
// to the backend. Install it after Authenticate so the user is logged.
func LogRequest(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = logger.NewRequestID()
			}
			w.Header().Set(RequestIDHeader, requestID)
			r = r.WithContext(client.WithRequestID(r.Context(), requestID))

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			route := routeTemplate(r)

			metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
			metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(float64(duration.Milliseconds()))

			attrs := []any{
				slog.String("route", route),
				slog.Int("status", wrapped.statusCode),
				slog.Int64("bytes", wrapped.written),
				slog.String("client_ip", clientIP(r)),
			}
			if user := UserFromContext(r.Context()); user != nil {
				attrs = append(attrs, slog.String("user_id", user.UserID), slog.String("username", user.Username))
			}

			reqLog := logger.WithDuration(logger.WithHTTPRequest(logger.WithRequest(log, requestID), r.Method, r.URL.Path), duration)
			switch {
			case wrapped.statusCode >= 500:
				reqLog.Error("request failed", attrs...)
			case wrapped.statusCode >= 400:
				reqLog.Warn("request rejected", attrs...)
			default:
				reqLog.Info("request completed", attrs...)
			}
		})
	}
}

// routeTemplate returns the matched mux route pattern, keeping metric labels
// free of usernames and IDs
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// clientIP returns the caller address, preferring proxy headers
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
