package handlers

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/devilmonastery/chirp/api/profilev1"
	"github.com/devilmonastery/chirp/internal/domain/entities"
)

// viewResponse tells the UI which page to render. Profile views carry the
// profile so the page renders without a second round trip.
type viewResponse struct {
	View    entities.View      `json:"view"`
	Profile *profilev1.Profile `json:"profile,omitempty"`
}

// ResolveView maps the path query parameter to a view
func (h *Handler) ResolveView(w http.ResponseWriter, r *http.Request) {
	view := entities.ResolveView(r.URL.Query().Get("path"))

	switch view.State {
	case entities.ViewNotFound:
		h.writeJSON(w, http.StatusNotFound, viewResponse{View: view})

	case entities.ViewProfile:
		resp, err := h.profiles.GetUserByUsername(r.Context(), &profilev1.GetUserByUsernameRequest{Username: view.Username})
		if status.Code(err) == codes.NotFound {
			h.writeJSON(w, http.StatusNotFound, viewResponse{View: view})
			return
		}
		if err != nil {
			h.writeGRPCError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, viewResponse{View: view, Profile: resp.Profile})

	default:
		h.writeJSON(w, http.StatusOK, viewResponse{View: view})
	}
}
