package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Endpoint declared by hand so the oauth2/google package (and its cloud
// metadata dependency) stays out of the build.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// GoogleProfile is the subset of the OpenID Connect userinfo response the
// auth service needs.
type GoogleProfile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

// GoogleOAuth wraps the Google authorization-code flow: building the consent
// URL, exchanging the callback code, and fetching the user's profile.
type GoogleOAuth struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleOAuth creates a new GoogleOAuth for the given client credentials.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     googleEndpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

// Enabled reports whether Google sign-in is configured.
func (g *GoogleOAuth) Enabled() bool {
	return g.config.ClientID != "" && g.config.ClientSecret != ""
}

// AuthCodeURL returns the Google consent page URL carrying the given state.
func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// FetchProfile exchanges an authorization code and retrieves the user's
// OpenID Connect profile.
func (g *GoogleOAuth) FetchProfile(ctx context.Context, code string) (GoogleProfile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("exchanging authorization code: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Get(g.userInfoURL)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return GoogleProfile{}, err
	}

	var info struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return GoogleProfile{}, err
	}

	return GoogleProfile{
		ID:        info.Sub,
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Picture:   info.Picture,
	}, nil
}
