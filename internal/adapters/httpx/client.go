package httpx

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// OAuth configures the client-credentials grant. It is disabled when
// TokenURL is empty.
type OAuth struct {
	ClientID     string   `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string   `mapstructure:"client_secret" yaml:"client_secret"`
	TokenURL     string   `mapstructure:"token_url" yaml:"token_url"`
	Scopes       []string `mapstructure:"scopes" yaml:"scopes"`
}

// Enabled reports whether a token endpoint is configured.
func (o OAuth) Enabled() bool { return o.TokenURL != "" }

// NewClient returns an HTTP client with the given timeout. When oauth is
// enabled, requests carry a bearer token fetched and refreshed with the
// client-credentials grant.
func NewClient(ctx context.Context, timeout time.Duration, oauth OAuth) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if !oauth.Enabled() {
		return &http.Client{Timeout: timeout}
	}

	cfg := clientcredentials.Config{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		TokenURL:     oauth.TokenURL,
		Scopes:       oauth.Scopes,
	}
	client := cfg.Client(ctx)
	client.Timeout = timeout
	return client
}
