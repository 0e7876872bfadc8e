// Package oauth exchanges authorization codes with external identity
// providers and reads the signed-in user's profile.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Provider names, also used as the prefix of local OAuth subjects.
const (
	Kakao  = "kakao"
	Naver  = "naver"
	Google = "google"
)

const defaultTimeout = 15 * time.Second

// ErrProfileRequest is returned when the provider's profile endpoint fails.
var ErrProfileRequest = errors.New("profile request failed")

// Profile is the subset of provider user data mapped onto local users.
type Profile struct {
	ID        string
	Email     string
	BirthYear string
	Male      bool
}

// Provider is one identity provider binding.
type Provider interface {
	Name() string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

// Credentials are the client registration values for one provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Endpoints locate the provider's token and profile URLs. Zero fields fall
// back to the provider's public endpoints.
type Endpoints struct {
	TokenURL   string
	ProfileURL string
}

// Option customises a provider.
type Option func(*base)

// WithEndpoints overrides the provider URLs.
func WithEndpoints(e Endpoints) Option {
	return func(b *base) {
		if e.TokenURL != "" {
			b.conf.Endpoint.TokenURL = e.TokenURL
		}
		if e.ProfileURL != "" {
			b.profileURL = e.ProfileURL
		}
	}
}

// WithHTTPClient sets the client used for both token and profile calls.
func WithHTTPClient(c *http.Client) Option {
	return func(b *base) {
		b.httpClient = c
	}
}

type base struct {
	name       string
	conf       *oauth2.Config
	profileURL string
	httpClient *http.Client
}

func newBase(name string, creds Credentials, tokenURL, profileURL string, opts []Option) base {
	b := base{
		name: name,
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		profileURL: profileURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string {
	return b.name
}

func (b *base) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
}

func (b *base) exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	token, err := b.conf.Exchange(b.clientContext(ctx), code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s token exchange: %w", b.name, err)
	}
	return token, nil
}

// getProfile performs an authenticated GET on the profile URL and decodes the JSON body into out.
func (b *base) getProfile(ctx context.Context, token *oauth2.Token, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.profileURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s profile request: %w", b.name, err)
	}
	token.SetAuthHeader(req)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrProfileRequest, b.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %s: %s", ErrProfileRequest, b.name, resp.Status, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode: %v", ErrProfileRequest, b.name, err)
	}
	return nil
}
