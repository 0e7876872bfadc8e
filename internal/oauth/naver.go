package oauth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	naverTokenURL   = "https://nid.naver.com/oauth2.0/token"
	naverProfileURL = "https://openapi.naver.com/v1/nid/me"
)

// NaverProvider binds Naver Login.
type NaverProvider struct {
	base
}

// NewNaverProvider creates a Naver binding.
func NewNaverProvider(creds Credentials, opts ...Option) *NaverProvider {
	return &NaverProvider{base: newBase(Naver, creds, naverTokenURL, naverProfileURL, opts)}
}

type naverProfile struct {
	ResultCode string `json:"resultcode"`
	Message    string `json:"message"`
	Response   struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Gender    string `json:"gender"`
		BirthYear string `json:"birthyear"`
	} `json:"response"`
}

// ExchangeCode trades an authorization code for a Naver access token.
// Naver requires a state value on the token request.
func (p *NaverProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.exchange(ctx, code, oauth2.SetAuthURLParam("state", uuid.NewString()))
}

// FetchProfile reads /v1/nid/me, whose payload is wrapped in a "response" envelope.
func (p *NaverProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	var body naverProfile
	if err := p.getProfile(ctx, token, &body); err != nil {
		return nil, err
	}
	if body.ResultCode != "" && body.ResultCode != "00" {
		return nil, fmt.Errorf("%w: naver: %s (%s)", ErrProfileRequest, body.Message, body.ResultCode)
	}
	if body.Response.ID == "" {
		return nil, fmt.Errorf("%w: naver profile has no id", ErrProfileRequest)
	}
	return &Profile{
		ID:        body.Response.ID,
		Email:     body.Response.Email,
		BirthYear: body.Response.BirthYear,
		Male:      body.Response.Gender == "M",
	}, nil
}
