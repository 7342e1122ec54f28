// Package oauth verifies authorization codes with external identity providers.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sort"

	httputils "manimate/manimate/utils/http"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

// Profile is what a provider tells us about the account. Absent fields are nil.
type Profile struct {
	Provider    string
	ExternalID  string
	Email       *string
	GivenName   *string
	FamilyName  *string
	DisplayName *string
	Login       *string
}

type Verifier interface {
	Provider() string
	AuthCodeURL(state string) string
	// Verify exchanges the authorization code and fetches the account profile.
	Verify(ctx context.Context, code string) (*Profile, error)
}

type Registry struct {
	verifiers map[string]Verifier
}

func NewRegistry(verifiers ...Verifier) *Registry {
	r := &Registry{verifiers: make(map[string]Verifier, len(verifiers))}
	for _, v := range verifiers {
		r.verifiers[v.Provider()] = v
	}
	return r
}

func (r *Registry) Get(provider string) (Verifier, error) {
	v, ok := r.verifiers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	return v, nil
}

func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.verifiers))
	for name := range r.verifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewState returns a random value for the OAuth state parameter.
func NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	if err := httputils.GetJSON(ctx, client, url, nil, out); err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
