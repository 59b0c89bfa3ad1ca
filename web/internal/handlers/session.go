package handlers

import (
	"log/slog"
	"net/http"

	"github.com/devilmonastery/chirp/web/internal/middleware"
	"github.com/devilmonastery/chirp/web/internal/session"
)

type createSessionRequest struct {
	Token string `json:"token"`
}

// CreateSession stores the identity provider's session token in the cookie
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Token == "" {
		h.writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	user, err := session.ParseUser(req.Token)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sessionManager.SetToken(r, w, req.Token); err != nil {
		h.log.Error("failed to save session", slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	h.log.Info("session created", slog.String("user_id", user.UserID))
	h.writeJSON(w, http.StatusCreated, user)
}

// GetSession reports the signed-in user
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// DeleteSession signs out
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.ClearToken(r, w); err != nil {
		h.log.Error("error clearing session", slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "failed to clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
