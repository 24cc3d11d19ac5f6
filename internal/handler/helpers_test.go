package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/robotics-league/internal/auth"
	"github.com/sakif/robotics-league/internal/catalog"
	"github.com/sakif/robotics-league/internal/handler"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/repository/memory"
	"github.com/sakif/robotics-league/internal/service"
	"github.com/sakif/robotics-league/internal/storage"
)

// profileHeader picks the browser profile in tests; the real server takes it
// from the signed profile cookie.
const profileHeader = "X-Test-Profile"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGoogle stands in for the Google provider.
type fakeGoogle struct {
	profile *model.FederatedProfile
	err     error
}

func (g *fakeGoogle) AuthURL(state string) string {
	return "https://accounts.example.test/auth?state=" + state
}

func (g *fakeGoogle) Exchange(_ context.Context, code string) (*model.FederatedProfile, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.profile, nil
}

type fixture struct {
	router  http.Handler
	backend *storage.Memory
	users   *memory.UserStore
	google  *fakeGoogle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := discardLogger()
	backend := storage.NewMemory()
	users := memory.NewUserStore()
	cat := catalog.Default()
	notes := service.NewNotificationLog(50, nil, logger)
	sessions := service.NewSessionManager(users, cat, auth.NewPasswordService(bcrypt.MinCost), notes, logger)
	google := &fakeGoogle{}

	catalogH := handler.NewCatalogHandler(cat, logger)
	sessionH := handler.NewSessionHandler(sessions, backend, google, false, logger)
	profileH := handler.NewProfileHandler(sessions, backend, logger)
	notesH := handler.NewNotificationHandler(notes, backend, nil, logger)
	cartH := handler.NewCartHandler(service.NewCartService(logger), backend, logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(profileHeader)
			if id == "" {
				id = "browser-1"
			}
			next.ServeHTTP(w, r.WithContext(auth.WithProfileID(r.Context(), id)))
		})
	})
	r.Get("/auth/google/login", sessionH.HandleGoogleLogin)
	r.Get("/auth/google/callback", sessionH.HandleGoogleCallback)
	r.Route("/api", func(r chi.Router) {
		r.Get("/teams", catalogH.HandleListTeams)
		r.Get("/teams/{id}", catalogH.HandleGetTeam)
		r.Get("/rankings", catalogH.HandleRankings)
		r.Get("/tournaments", catalogH.HandleListTournaments)
		r.Get("/tournaments/{id}", catalogH.HandleGetTournament)

		r.Get("/session", sessionH.HandleSession)
		r.Post("/session/redirect", sessionH.HandleSetRedirect)
		r.Post("/auth/register", sessionH.HandleRegister)
		r.Post("/auth/login", sessionH.HandleLogin)
		r.Post("/auth/logout", sessionH.HandleLogout)

		r.Get("/me", profileH.HandleMe)
		r.Patch("/me/profile", profileH.HandleUpdateProfile)
		r.Put("/me/social/{provider}", profileH.HandleSetSocialLink)
		r.Put("/me/email", profileH.HandleChangeEmail)
		r.Put("/me/password", profileH.HandleChangePassword)
		r.Get("/me/settings", profileH.HandleGetSettings)
		r.Put("/me/settings", profileH.HandleSaveSettings)
		r.Put("/me/follows/teams/{id}", profileH.HandleFollowTeam)
		r.Delete("/me/follows/teams/{id}", profileH.HandleUnfollowTeam)
		r.Put("/me/follows/tournaments/{id}", profileH.HandleFollowTournament)
		r.Delete("/me/follows/tournaments/{id}", profileH.HandleUnfollowTournament)

		r.Get("/notifications", notesH.HandleList)
		r.Post("/notifications/read", notesH.HandleMarkAllRead)
		r.Post("/notifications/{id}/read", notesH.HandleMarkRead)
		r.Get("/notifications/ws", notesH.HandleStream)

		r.Get("/cart", cartH.HandleGet)
		r.Put("/cart", cartH.HandleReplace)
	})

	return &fixture{router: r, backend: backend, users: users, google: google}
}

// do sends a request as profile (empty means the default profile).
func (f *fixture) do(t *testing.T, method, path, profile string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if profile != "" {
		req.Header.Set(profileHeader, profile)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) register(t *testing.T, profile, name, email, password string) {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/api/auth/register", profile, map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}
