package oauth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPIURL = "https://api.github.com"

type GitHub struct {
	conf   *oauth2.Config
	apiURL string
}

func NewGitHub(clientID, clientSecret, redirectURL string) *GitHub {
	return &GitHub{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiURL: githubAPIURL,
	}
}

func (g *GitHub) Provider() string { return "github" }

func (g *GitHub) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

func (g *GitHub) Verify(ctx context.Context, code string) (*Profile, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github code exchange failed: %w", err)
	}
	client := g.conf.Client(ctx, token)

	var user struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(ctx, client, g.apiURL+"/user", &user); err != nil {
		return nil, fmt.Errorf("github user: %w", err)
	}
	if user.ID == 0 {
		return nil, errors.New("github user has no id")
	}

	// The public profile hides private addresses; fall back to the primary verified one.
	email := user.Email
	if email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, g.apiURL+"/user/emails", &emails); err == nil {
			for _, e := range emails {
				if e.Primary && e.Verified {
					email = e.Email
					break
				}
			}
		}
	}

	return &Profile{
		Provider:    g.Provider(),
		ExternalID:  strconv.FormatInt(user.ID, 10),
		Email:       nonEmpty(email),
		DisplayName: nonEmpty(user.Name),
		Login:       nonEmpty(user.Login),
	}, nil
}
