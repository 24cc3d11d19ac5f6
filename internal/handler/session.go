package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/service"
	"github.com/sakif/robotics-league/internal/storage"
)

const oauthStateCookie = "oauth_state"

// FederatedProvider is the identity provider behind "Sign in with Google".
type FederatedProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*model.FederatedProfile, error)
}

// SessionHandler covers sign-in state: registration, login (password or
// Google), logout and the session summary the page header renders.
type SessionHandler struct {
	sessions *service.SessionManager
	backend  storage.Backend
	google   FederatedProvider // nil when Google login is not configured
	secure   bool
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler. google may be nil.
func NewSessionHandler(
	sessions *service.SessionManager,
	backend storage.Backend,
	google FederatedProvider,
	secureCookies bool,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		backend:  backend,
		google:   google,
		secure:   secureCookies,
		logger:   logger,
	}
}

// GoogleEnabled reports whether the Google routes should be mounted.
func (h *SessionHandler) GoogleEnabled() bool { return h.google != nil }

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type redirectRequest struct {
	Path string `json:"path"`
}

// HandleSession returns who is signed in on this browser.
//
// HTTP: GET /api/session
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	s, err := h.sessions.Session(r.Context(), local)
	if err != nil {
		h.logger.Error("reading session", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleRegister creates an account and signs this browser into it.
//
// HTTP: POST /api/auth/register
// REQUEST BODY: {"name": "...", "email": "...", "password": "..."}
func (h *SessionHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.sessions.Register(r.Context(), local, req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// HandleLogin signs in with email and password.
//
// HTTP: POST /api/auth/login
// REQUEST BODY: {"email": "...", "password": "..."}
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.sessions.Login(r.Context(), local, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleLogout signs this browser out. The account itself is kept.
//
// HTTP: POST /api/auth/logout
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.sessions.Logout(r.Context(), local); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetRedirect remembers where to go after the next sign-in.
//
// HTTP: POST /api/session/redirect
// REQUEST BODY: {"path": "/profile"}
func (h *SessionHandler) HandleSetRedirect(w http.ResponseWriter, r *http.Request) {
	var req redirectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.sessions.SetRedirectAfterLogin(r.Context(), local, req.Path); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGoogleLogin sends the browser to Google's consent page.
//
// HTTP: GET /auth/google/login
//
// The random state goes into a short-lived HttpOnly cookie and is checked
// on callback.
func (h *SessionHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the Google flow and signs the browser in.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
func (h *SessionHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// single-use
	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/login?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	profile, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		http.Redirect(w, r, "/login?auth=failed", http.StatusSeeOther)
		return
	}

	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.sessions.LoginWithFederatedIdentity(r.Context(), local, *profile)
	if err != nil {
		h.logger.Error("google callback: sign-in failed", slog.String("error", err.Error()))
		http.Redirect(w, r, "/login?auth=failed", http.StatusSeeOther)
		return
	}

	target := result.Redirect
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
