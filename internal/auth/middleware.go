package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"
)

// ProfileCookie is the cookie that carries the signed profile token.
const ProfileCookie = "league_profile"

// contextKey is unexported so no other package can read or shadow our values.
type contextKey string

const profileIDKey contextKey = "profileID"

// CookieOptions controls the attributes of the profile cookie.
type CookieOptions struct {
	// Secure should be true whenever the site is served over HTTPS.
	Secure bool
}

// Profile makes sure every request belongs to a browser profile.
//
// A request with a valid cookie keeps its profile id. Anything else (no
// cookie, expired, tampered, signed with an old secret) gets a fresh profile
// id and a new cookie on the response. The request is never rejected: an
// anonymous visitor is simply a profile nobody has signed into yet.
func Profile(tokens *TokenService, opts CookieOptions, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profileID, err := profileFromCookie(r, tokens)
			if err != nil {
				profileID = xid.New().String()
				token, err := tokens.Generate(profileID)
				if err != nil {
					logger.Error("issuing profile token", slog.String("error", err.Error()))
					http.Error(w, `{"error":"internal_error","message":"an unexpected error occurred"}`, http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     ProfileCookie,
					Value:    token,
					Path:     "/",
					MaxAge:   int(tokens.TTL().Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug("new profile", slog.String("profile_id", profileID))
			}

			next.ServeHTTP(w, r.WithContext(WithProfileID(r.Context(), profileID)))
		})
	}
}

// WithProfileID returns a copy of ctx carrying profileID.
func WithProfileID(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, profileIDKey, profileID)
}

// ProfileIDFromContext returns the profile id set by the Profile middleware.
func ProfileIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(profileIDKey).(string)
	return id, ok && id != ""
}

func profileFromCookie(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(ProfileCookie)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
