package services

import (
	"context"
	"errors"
	"fmt"

	"eartalk/internal/metrics"
	"eartalk/internal/models"
	"eartalk/internal/oauth"

	"github.com/rs/zerolog"
)

// OAuthService signs users in through external identity providers.
type OAuthService struct {
	providers map[string]oauth.Provider
	users     *UserService
	tokens    *TokenService
	log       zerolog.Logger
}

// NewOAuthService creates an OAuthService serving the given providers, keyed by Name().
func NewOAuthService(providers []oauth.Provider, users *UserService, tokens *TokenService, log zerolog.Logger) *OAuthService {
	byName := make(map[string]oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthService{
		providers: byName,
		users:     users,
		tokens:    tokens,
		log:       log,
	}
}

// Login exchanges code with provider, finds or creates the local user bound
// to the provider subject and returns a local access token.
func (s *OAuthService) Login(ctx context.Context, provider, code string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if code == "" {
		return "", ErrMissingCode
	}

	token, err := s.login(ctx, p, code)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.OAuthLoginsTotal.WithLabelValues(provider, result).Inc()
	return token, err
}

func (s *OAuthService) login(ctx context.Context, p oauth.Provider, code string) (string, error) {
	providerToken, err := p.ExchangeCode(ctx, code)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", p.Name()).Msg("oauth code exchange failed")
		return "", fmt.Errorf("%w: %v", ErrUpstreamProcessingFailed, err)
	}

	profile, err := p.FetchProfile(ctx, providerToken)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", p.Name()).Msg("oauth profile fetch failed")
		return "", fmt.Errorf("%w: %v", ErrUpstreamProcessingFailed, err)
	}

	user, err := s.findOrCreate(p.Name()+"-"+profile.ID, profile)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueAccessToken(user.ID)
}

func (s *OAuthService) findOrCreate(subject string, profile *oauth.Profile) (*models.User, error) {
	user, err := s.users.GetByOAuthSubject(subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user, err = s.users.CreateOAuthUser(subject, profile)
	if errors.Is(err, ErrDuplicateIdentity) {
		// Lost a race with a concurrent first login.
		return s.users.GetByOAuthSubject(subject)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", user.ID).Str("subject", subject).Msg("oauth user registered")
	return user, nil
}
