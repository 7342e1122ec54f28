package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// providerServer fakes both the token endpoint and the profile API.
func providerServer(t *testing.T, routes map[string]interface{}) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"bad_verification_code"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok", "token_type": "bearer"})
	})
	for path, body := range routes {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testEndpoint(srv *httptest.Server) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   srv.URL + "/authorize",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

func TestGoogle_Verify(t *testing.T) {
	srv := providerServer(t, map[string]interface{}{
		"/userinfo": map[string]string{
			"id": "g-1", "email": "ada@example.com", "name": "Ada Lovelace",
			"given_name": "Ada", "family_name": "Lovelace",
		},
	})
	g := NewGoogle("id", "secret", "http://localhost/auth/google/callback")
	g.conf.Endpoint = testEndpoint(srv)
	g.userInfoURL = srv.URL + "/userinfo"

	p, err := g.Verify(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "google", p.Provider)
	assert.Equal(t, "g-1", p.ExternalID)
	require.NotNil(t, p.Email)
	assert.Equal(t, "ada@example.com", *p.Email)
	require.NotNil(t, p.GivenName)
	assert.Equal(t, "Ada", *p.GivenName)
	assert.Nil(t, p.Login)
}

func TestGoogle_VerifyBadCode(t *testing.T) {
	srv := providerServer(t, nil)
	g := NewGoogle("id", "secret", "")
	g.conf.Endpoint = testEndpoint(srv)

	_, err := g.Verify(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestGitHub_VerifyFallsBackToPrimaryEmail(t *testing.T) {
	srv := providerServer(t, map[string]interface{}{
		"/user": map[string]interface{}{"id": 4242, "login": "octo", "name": ""},
		"/user/emails": []map[string]interface{}{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "octo@example.com", "primary": true, "verified": true},
		},
	})
	g := NewGitHub("id", "secret", "")
	g.conf.Endpoint = testEndpoint(srv)
	g.apiURL = srv.URL

	p, err := g.Verify(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "4242", p.ExternalID)
	require.NotNil(t, p.Email)
	assert.Equal(t, "octo@example.com", *p.Email)
	assert.Nil(t, p.DisplayName)
	require.NotNil(t, p.Login)
	assert.Equal(t, "octo", *p.Login)
}

func TestAuthCodeURL_CarriesState(t *testing.T) {
	g := NewGoogle("client-1", "secret", "http://localhost/auth/google/callback")
	u, err := url.Parse(g.AuthCodeURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "client-1", u.Query().Get("client_id"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewGoogle("a", "b", ""), NewGitHub("c", "d", ""))
	assert.Equal(t, []string{"github", "google"}, r.Providers())

	v, err := r.Get("github")
	require.NoError(t, err)
	assert.Equal(t, "github", v.Provider())

	_, err = r.Get("twitter")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
