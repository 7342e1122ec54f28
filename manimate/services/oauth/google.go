package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type Google struct {
	conf        *oauth2.Config
	userInfoURL string
}

func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *Google) Provider() string { return "google" }

func (g *Google) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

func (g *Google) Verify(ctx context.Context, code string) (*Profile, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}

	var info struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := getJSON(ctx, g.conf.Client(ctx, token), g.userInfoURL, &info); err != nil {
		return nil, fmt.Errorf("google user info: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("google user info has no id")
	}

	return &Profile{
		Provider:    g.Provider(),
		ExternalID:  info.ID,
		Email:       nonEmpty(info.Email),
		GivenName:   nonEmpty(info.GivenName),
		FamilyName:  nonEmpty(info.FamilyName),
		DisplayName: nonEmpty(info.Name),
	}, nil
}
