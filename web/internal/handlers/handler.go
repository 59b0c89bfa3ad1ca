package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/devilmonastery/chirp/api/profilev1"
	"github.com/devilmonastery/chirp/web/internal/session"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 64 << 10

// Handler holds dependencies for all web handlers
type Handler struct {
	profiles       profilev1.ProfileServiceClient
	sessionManager *session.Manager
	log            *slog.Logger
}

// New creates a new handler. The session token travels on the request
// context, so one backend client serves every request.
func New(profiles profilev1.ProfileServiceClient, sessionManager *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{
		profiles:       profiles,
		sessionManager: sessionManager,
		log:            logger.With(slog.String("component", "web_handler")),
	}
}

// errorResponse is the body of every non-2xx JSON response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON writes v with the given status
func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// writeError writes a client error that did not come from the backend
func (h *Handler) writeError(w http.ResponseWriter, code int, message string) {
	h.writeJSON(w, code, errorResponse{Error: message, Code: codeName(code)})
}

// writeGRPCError translates a backend error into an HTTP response
func (h *Handler) writeGRPCError(w http.ResponseWriter, r *http.Request, err error) {
	st, _ := status.FromError(err)
	code := httpStatus(st.Code())

	if code >= http.StatusInternalServerError {
		h.log.Error("backend call failed",
			slog.String("path", r.URL.Path),
			slog.String("grpc_code", st.Code().String()),
			slog.String("error", st.Message()))
	}

	h.writeJSON(w, code, errorResponse{Error: st.Message(), Code: codeName(code)})
}

// httpStatus maps gRPC status codes to HTTP status codes
func httpStatus(c codes.Code) int {
	switch c {
	case codes.OK:
		return http.StatusOK
	case codes.NotFound:
		return http.StatusNotFound
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusBadGateway
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Canceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// codeName is the machine-readable error code sent alongside the message
func codeName(code int) string {
	switch code {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusBadGateway:
		return "upstream_failure"
	case http.StatusGatewayTimeout:
		return "timeout"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "internal"
	}
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
