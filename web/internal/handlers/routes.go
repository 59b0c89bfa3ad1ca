package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/chirp/web/internal/middleware"
)

// Router sets up the HTTP router with all routes and middleware
func Router(h *Handler, authMw *middleware.AuthMiddleware, log *slog.Logger) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// Public routes
	router.HandleFunc("/api/profile/{username}", h.GetProfile).Methods(http.MethodGet)
	router.HandleFunc("/api/profiles", h.GetProfiles).Methods(http.MethodGet)
	router.HandleFunc("/api/view", h.ResolveView).Methods(http.MethodGet)
	router.HandleFunc("/api/session", h.CreateSession).Methods(http.MethodPost)
	router.HandleFunc("/api/session", h.GetSession).Methods(http.MethodGet)
	router.HandleFunc("/api/session", h.DeleteSession).Methods(http.MethodDelete)

	// Auth required
	router.Handle("/api/profile", authMw.RequireAuth(http.HandlerFunc(h.UpdateProfile))).Methods(http.MethodPatch)

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, "no such endpoint")
	})

	router.Use(authMw.Authenticate, middleware.LogRequest(log))
	return router
}
