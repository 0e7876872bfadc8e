package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"eartalk/internal/models"
	"eartalk/internal/oauth"
	"eartalk/internal/repositories"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	tempPasswordLength  = 8
	tempPasswordCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// PasswordMailer delivers temporary passwords out of band.
type PasswordMailer interface {
	SendTemporaryPassword(ctx context.Context, to, password string) error
}

// UserService is the credential and identity store.
type UserService struct {
	userRepo repositories.UserRepository
	mailer   PasswordMailer
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, mailer PasswordMailer, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		mailer:   mailer,
		log:      log,
	}
}

// CreateLocalUser registers an email/password account.
func (s *UserService) CreateLocalUser(email, password, verifyPassword, birthYear string, sex bool) (*models.User, error) {
	if password != verifyPassword {
		return nil, ErrPasswordMismatch
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email %s", ErrDuplicateIdentity, email)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:          &email,
		BirthYear:      birthYear,
		Sex:            sex,
		HashedPassword: &hashed,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// CreateOAuthUser registers an account bound to an OAuth subject, with no password.
// The provider email is kept only when no other account already uses it.
func (s *UserService) CreateOAuthUser(subjectID string, profile *oauth.Profile) (*models.User, error) {
	existing, err := s.userRepo.GetByOAuthID(subjectID)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: subject %s", ErrDuplicateIdentity, subjectID)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		OAuthID:   &subjectID,
		BirthYear: profile.BirthYear,
		Sex:       profile.Male,
	}
	if profile.Email != "" {
		if _, err := s.userRepo.GetByEmail(profile.Email); errors.Is(err, repositories.ErrNotFound) {
			email := profile.Email
			user.Email = &email
		}
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register oauth user: %w", err)
	}
	return user, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords yield the same ErrInvalidCredentials.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil || !user.HasPassword() {
		// Keep the timing close to the found-user path.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdatePassword replaces the password of userID after verifying the current one.
func (s *UserService) UpdatePassword(userID uint, currentPassword, newPassword, verifyNewPassword string) error {
	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}

	if !user.HasPassword() ||
		bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}
	if newPassword != verifyNewPassword {
		return ErrPasswordMismatch
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(user.ID, hashed)
}

// ResetPassword stores a random temporary password for email and mails it.
func (s *UserService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: user with email %s", ErrNotFound, email)
		}
		return err
	}

	temp, err := randomPassword(tempPasswordLength)
	if err != nil {
		return err
	}
	hashed, err := hashPassword(temp)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, hashed); err != nil {
		return err
	}

	if err := s.mailer.SendTemporaryPassword(ctx, email, temp); err != nil {
		s.log.Error().Err(err).Uint("user_id", user.ID).Msg("temporary password email failed")
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	s.log.Info().Uint("user_id", user.ID).Msg("temporary password issued")
	return nil
}

// GetByID returns the user with id or ErrNotFound.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return user, nil
}

// GetByOAuthSubject returns the user bound to an OAuth subject or ErrNotFound.
func (s *UserService) GetByOAuthSubject(subjectID string) (*models.User, error) {
	user, err := s.userRepo.GetByOAuthID(subjectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: subject %s", ErrNotFound, subjectID)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	return s.dummyHash
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func randomPassword(length int) (string, error) {
	max := big.NewInt(int64(len(tempPasswordCharset)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		buf[i] = tempPasswordCharset[n.Int64()]
	}
	return string(buf), nil
}
