package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/devilmonastery/chirp/api/profilev1"
)

// GetProfile returns the public profile for a username
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	resp, err := h.profiles.GetUserByUsername(r.Context(), &profilev1.GetUserByUsernameRequest{Username: username})
	if err != nil {
		h.writeGRPCError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp.Profile)
}

// UpdateProfile edits the signed-in user's profile. The request body has no
// user field; the backend writes to whoever the session token names.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profilev1.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var header metadata.MD
	resp, err := h.profiles.UpdateProfile(r.Context(), &req, grpc.Header(&header))
	copyRateLimitHeaders(w, header)
	if err != nil {
		h.writeGRPCError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetProfiles returns profiles for the comma-separated or repeated ids
// query parameter, in request order
func (h *Handler) GetProfiles(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, v := range r.URL.Query()["ids"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	if len(ids) == 0 {
		h.writeJSON(w, http.StatusOK, profilev1.GetProfilesByUserIDsResponse{Profiles: []*profilev1.Profile{}})
		return
	}

	resp, err := h.profiles.GetProfilesByUserIDs(r.Context(), &profilev1.GetProfilesByUserIDsRequest{UserIDs: ids})
	if err != nil {
		h.writeGRPCError(w, r, err)
		return
	}
	if resp.Profiles == nil {
		resp.Profiles = []*profilev1.Profile{}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// copyRateLimitHeaders forwards the backend's rate limit headers
func copyRateLimitHeaders(w http.ResponseWriter, md metadata.MD) {
	for key, header := range map[string]string{
		"x-ratelimit-limit":     "X-RateLimit-Limit",
		"x-ratelimit-remaining": "X-RateLimit-Remaining",
		"retry-after":           "Retry-After",
	} {
		if v := md.Get(key); len(v) > 0 {
			w.Header().Set(header, v[0])
		}
	}
}
