package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

const (
	googleTokenURL   = "https://oauth2.googleapis.com/token"
	googleProfileURL = "https://www.googleapis.com/userinfo/v2/me"
)

// GoogleProvider binds Google Sign-In.
type GoogleProvider struct {
	base
}

// NewGoogleProvider creates a Google binding.
func NewGoogleProvider(creds Credentials, opts ...Option) *GoogleProvider {
	return &GoogleProvider{base: newBase(Google, creds, googleTokenURL, googleProfileURL, opts)}
}

type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ExchangeCode trades an authorization code for a Google access token.
func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.exchange(ctx, code)
}

// FetchProfile reads the userinfo endpoint. Google shares no birth year or gender here.
func (p *GoogleProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	var body googleProfile
	if err := p.getProfile(ctx, token, &body); err != nil {
		return nil, err
	}
	if body.ID == "" {
		return nil, fmt.Errorf("%w: google profile has no id", ErrProfileRequest)
	}
	return &Profile{ID: body.ID, Email: body.Email}, nil
}
