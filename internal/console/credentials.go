// Package console talks to the search-engine webmaster API: service-account
// auth, sitemap status listing, and the indexing status poller.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"

	"github.com/studiofoks/siteops/config"
)

const (
	// ScopeWebmasters grants sitemap and indexing-status access.
	ScopeWebmasters = "https://www.googleapis.com/auth/webmasters"

	defaultTokenURL = "https://oauth2.googleapis.com/token"
)

// ServiceAccount is the credential file injected via secrets. client_email
// and private_key are required; anything else is optional.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// LoadServiceAccount reads and validates a service-account JSON file. A
// missing file or missing required field is a fatal configuration error.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no service-account credentials file configured", config.ErrConfig)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read credentials file %s: %v", config.ErrConfig, path, err)
	}

	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials file %s: %v", config.ErrConfig, path, err)
	}
	if sa.ClientEmail == "" {
		return nil, fmt.Errorf("%w: credentials file %s is missing client_email", config.ErrConfig, path)
	}
	if sa.PrivateKey == "" {
		return nil, fmt.Errorf("%w: credentials file %s is missing private_key", config.ErrConfig, path)
	}
	if sa.TokenURI == "" {
		sa.TokenURI = defaultTokenURL
	}

	return &sa, nil
}

// TokenSource builds the two-legged JWT token source for the webmasters scope.
func (sa *ServiceAccount) TokenSource(ctx context.Context) oauth2.TokenSource {
	cfg := &jwt.Config{
		Email:      sa.ClientEmail,
		PrivateKey: []byte(sa.PrivateKey),
		Scopes:     []string{ScopeWebmasters},
		TokenURL:   sa.TokenURI,
	}
	return cfg.TokenSource(ctx)
}

// HTTPClient returns an authenticated HTTP client for the API.
func (sa *ServiceAccount) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, sa.TokenSource(ctx))
}
