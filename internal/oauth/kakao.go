package oauth

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
)

const (
	kakaoTokenURL   = "https://kauth.kakao.com/oauth/token"
	kakaoProfileURL = "https://kapi.kakao.com/v2/user/me"
)

// KakaoProvider binds Kakao Login.
type KakaoProvider struct {
	base
}

// NewKakaoProvider creates a Kakao binding.
func NewKakaoProvider(creds Credentials, opts ...Option) *KakaoProvider {
	return &KakaoProvider{base: newBase(Kakao, creds, kakaoTokenURL, kakaoProfileURL, opts)}
}

type kakaoProfile struct {
	ID      int64 `json:"id"`
	Account struct {
		Email     string `json:"email"`
		BirthYear string `json:"birthyear"`
		Gender    string `json:"gender"`
	} `json:"kakao_account"`
}

// ExchangeCode trades an authorization code for a Kakao access token.
func (p *KakaoProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.exchange(ctx, code)
}

// FetchProfile reads /v2/user/me.
func (p *KakaoProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	var body kakaoProfile
	if err := p.getProfile(ctx, token, &body); err != nil {
		return nil, err
	}
	if body.ID == 0 {
		return nil, fmt.Errorf("%w: kakao profile has no id", ErrProfileRequest)
	}
	return &Profile{
		ID:        strconv.FormatInt(body.ID, 10),
		Email:     body.Account.Email,
		BirthYear: body.Account.BirthYear,
		Male:      body.Account.Gender == "male",
	}, nil
}
