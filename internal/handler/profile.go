package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/service"
	"github.com/sakif/robotics-league/internal/storage"
)

// ProfileHandler serves the signed-in user's own account: profile edits,
// credentials, settings and follows. Every route answers 401 when the
// browser is signed out.
type ProfileHandler struct {
	sessions *service.SessionManager
	backend  storage.Backend
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(sessions *service.SessionManager, backend storage.Backend, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{sessions: sessions, backend: backend, logger: logger}
}

type socialLinkRequest struct {
	Handle string `json:"handle"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// signedIn resolves the request's profile and its current user.
func (h *ProfileHandler) signedIn(r *http.Request) (*storage.Local, *model.User, error) {
	local, err := profileStore(r, h.backend)
	if err != nil {
		return nil, nil, err
	}
	user, err := h.sessions.RequireUser(r.Context(), local)
	if err != nil {
		return nil, nil, err
	}
	return local, user, nil
}

// HandleMe returns the signed-in user.
//
// HTTP: GET /api/me
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	_, user, err := h.signedIn(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile merges a partial profile edit.
//
// HTTP: PATCH /api/me/profile
// REQUEST BODY: any subset of {"name","avatar","bio","location","theme",
// "interests","socialLinks","version"}
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update service.ProfileUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, err)
		return
	}
	local, user, err := h.signedIn(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.sessions.UpdateProfile(r.Context(), local, user.ID, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleSetSocialLink sets or (with an empty handle) removes one link.
//
// HTTP: PUT /api/me/social/{provider}
// REQUEST BODY: {"handle": "@ana"}
func (h *ProfileHandler) HandleSetSocialLink(w http.ResponseWriter, r *http.Request) {
	var req socialLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	local, user, err := h.signedIn(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.sessions.SetSocialLink(r.Context(), local, user.ID, chiParam(r, "provider"), req.Handle)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleChangeEmail moves the account to a new address.
//
// HTTP: PUT /api/me/email
func (h *ProfileHandler) HandleChangeEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	local, user, err := h.signedIn(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.sessions.ChangeEmail(r.Context(), local, user.ID, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleChangePassword replaces the password. Google-only accounts may set
// a first password without a current one.
//
// HTTP: PUT /api/me/password
func (h *ProfileHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	local, user, err := h.signedIn(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.sessions.ChangePassword(r.Context(), local, user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetSettings returns saved settings, or the defaults.
//
// HTTP: GET /api/me/settings
func (h *ProfileHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	local, user, err := h.signedIn(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s, err := h.sessions.Settings(r.Context(), local, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleSaveSettings replaces the user's settings.
//
// HTTP: PUT /api/me/settings
func (h *ProfileHandler) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var s model.Settings
	if err := decodeJSON(w, r, &s); err != nil {
		writeError(w, err)
		return
	}
	local, user, err := h.signedIn(r)
	if err != nil {
		writeError(w, err)
		return
	}
	saved, err := h.sessions.SaveSettings(r.Context(), local, user.ID, s)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type followFunc func(ctx context.Context, local *storage.Local, userID string, id int) (*model.User, error)

// follow adapts one of the follow/unfollow operations to a route with an
// {id} parameter.
func (h *ProfileHandler) follow(fn followFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intParam(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		local, user, err := h.signedIn(r)
		if err != nil {
			writeError(w, err)
			return
		}
		updated, err := fn(r.Context(), local, user.ID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// HTTP: PUT /api/me/follows/teams/{id}
func (h *ProfileHandler) HandleFollowTeam(w http.ResponseWriter, r *http.Request) {
	h.follow(h.sessions.FollowTeam)(w, r)
}

// HTTP: DELETE /api/me/follows/teams/{id}
func (h *ProfileHandler) HandleUnfollowTeam(w http.ResponseWriter, r *http.Request) {
	h.follow(h.sessions.UnfollowTeam)(w, r)
}

// HTTP: PUT /api/me/follows/tournaments/{id}
func (h *ProfileHandler) HandleFollowTournament(w http.ResponseWriter, r *http.Request) {
	h.follow(h.sessions.FollowTournament)(w, r)
}

// HTTP: DELETE /api/me/follows/tournaments/{id}
func (h *ProfileHandler) HandleUnfollowTournament(w http.ResponseWriter, r *http.Request) {
	h.follow(h.sessions.UnfollowTournament)(w, r)
}
