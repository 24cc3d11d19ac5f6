package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/sakif/robotics-league/internal/model"
)

// GoogleUserInfoURL is the OpenID Connect userinfo endpoint.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// googleUserInfo is the part of the userinfo response we read.
type googleUserInfo struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture"`
}

// GoogleProvider runs the OAuth 2.0 authorization code flow against Google.
//
// The code-for-token exchange happens server to server using the client
// secret; the access token never reaches the browser.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider builds a provider for the given OAuth client.
// callbackURL must match an authorised redirect URI of that client exactly.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: GoogleUserInfoURL,
	}
}

// AuthURL returns the consent page URL. state is echoed back to the callback
// and must match the value stored in the state cookie.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the signed-in person's profile.
//
// Only verified addresses are accepted: the email is what links a Google
// sign-in to an existing league account.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*model.FederatedProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// config.Client adds "Authorization: Bearer <token>" to every request.
	resp, err := p.config.Client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo: %w", err)
	}
	if info.Email == "" || !info.EmailVerified {
		return nil, fmt.Errorf("auth: Google account has no verified email")
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	return &model.FederatedProfile{
		Name:     name,
		Email:    info.Email,
		ImageURL: info.Picture,
	}, nil
}
