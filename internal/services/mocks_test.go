package services_test

import (
	"context"

	"eartalk/internal/aiclient"
	"eartalk/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByOAuthID(oauthID string) (*models.User, error) {
	args := m.Called(oauthID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(id uint, hashed string) error {
	args := m.Called(id, hashed)
	return args.Error(0)
}

// MockAudioRepository is a mock implementation of repositories.AudioRepository
type MockAudioRepository struct {
	mock.Mock
}

func (m *MockAudioRepository) Create(audio *models.Audio) error {
	args := m.Called(audio)
	return args.Error(0)
}

func (m *MockAudioRepository) GetByIdentifier(identifier string) (*models.Audio, error) {
	args := m.Called(identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Audio), args.Error(1)
}

func (m *MockAudioRepository) ListByOwner(ownerID uint) ([]models.Audio, int64, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Audio), args.Get(1).(int64), args.Error(2)
}

func (m *MockAudioRepository) LatestByOwner(ownerID uint) (*models.Audio, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Audio), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendTemporaryPassword(ctx context.Context, to, password string) error {
	args := m.Called(ctx, to, password)
	return args.Error(0)
}

type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) TextToSpeech(ctx context.Context, text string, reference []byte, referenceName, outputPath string) (string, error) {
	args := m.Called(ctx, text, reference, referenceName, outputPath)
	return args.String(0), args.Error(1)
}

func (m *MockSynthesizer) SpeechToTextToSpeech(ctx context.Context, audio []byte, filename, outputPath string) (*aiclient.Transcript, error) {
	args := m.Called(ctx, audio, filename, outputPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aiclient.Transcript), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishAudioCreated(audio *models.Audio) error {
	args := m.Called(audio)
	return args.Error(0)
}

type MockAudioCache struct {
	mock.Mock
}

func (m *MockAudioCache) Get(ctx context.Context, identifier string) (*models.Audio, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Audio), args.Error(1)
}

func (m *MockAudioCache) Set(ctx context.Context, audio *models.Audio) error {
	args := m.Called(ctx, audio)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }
