package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eartalk/internal/aiclient"
	"eartalk/internal/metrics"
	"eartalk/internal/models"
	"eartalk/internal/repositories"
	"eartalk/internal/storage"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// SpeechSynthesizer is the voice model server.
type SpeechSynthesizer interface {
	TextToSpeech(ctx context.Context, text string, reference []byte, referenceName, outputPath string) (string, error)
	SpeechToTextToSpeech(ctx context.Context, audio []byte, filename, outputPath string) (*aiclient.Transcript, error)
}

// AudioEventPublisher announces committed audio records.
type AudioEventPublisher interface {
	PublishAudioCreated(audio *models.Audio) error
}

// AudioCache is a read-through cache for audio lookups by identifier.
// Get returns nil, nil on a miss.
type AudioCache interface {
	Get(ctx context.Context, identifier string) (*models.Audio, error)
	Set(ctx context.Context, audio *models.Audio) error
}

// SubmitAudioInput carries one submission. Exactly one of Text and Audio must be set.
type SubmitAudioInput struct {
	Text          string
	Audio         []byte
	AudioFilename string
	OwnerID       *uint
}

// AudioOption configures optional AudioService collaborators.
type AudioOption func(*AudioService)

// WithEventPublisher publishes an event after every committed submission.
func WithEventPublisher(p AudioEventPublisher) AudioOption {
	return func(s *AudioService) { s.publisher = p }
}

// WithAudioCache enables the read-through cache for GetByIdentifier.
func WithAudioCache(c AudioCache) AudioOption {
	return func(s *AudioService) { s.cache = c }
}

// AudioService turns text or recorded speech into synthesised audio and stores the result.
type AudioService struct {
	audioRepo repositories.AudioRepository
	userRepo  repositories.UserRepository
	ai        SpeechSynthesizer
	paths     *storage.PathAllocator
	refs      *storage.References
	publisher AudioEventPublisher
	cache     AudioCache
	log       zerolog.Logger
	now       func() time.Time
}

// NewAudioService creates a new AudioService.
func NewAudioService(
	audioRepo repositories.AudioRepository,
	userRepo repositories.UserRepository,
	ai SpeechSynthesizer,
	paths *storage.PathAllocator,
	refs *storage.References,
	log zerolog.Logger,
	opts ...AudioOption,
) *AudioService {
	s := &AudioService{
		audioRepo: audioRepo,
		userRepo:  userRepo,
		ai:        ai,
		paths:     paths,
		refs:      refs,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one submission end to end. Nothing is persisted when the model
// server fails, and an uploaded original is removed again.
func (s *AudioService) Submit(ctx context.Context, in SubmitAudioInput) (*models.Audio, error) {
	text := strings.TrimSpace(in.Text)
	hasText, hasAudio := text != "", len(in.Audio) > 0

	kind := "text"
	if hasAudio {
		kind = "audio"
	}

	switch {
	case !hasText && !hasAudio:
		metrics.AudioSubmissionsTotal.WithLabelValues(kind, "invalid").Inc()
		return nil, ErrNoInput
	case hasText && hasAudio:
		metrics.AudioSubmissionsTotal.WithLabelValues(kind, "invalid").Inc()
		return nil, ErrBothInputs
	}

	audio, err := s.submit(ctx, text, in)
	if err != nil {
		result := "error"
		if errors.Is(err, ErrUpstreamProcessingFailed) {
			result = "upstream_error"
		}
		metrics.AudioSubmissionsTotal.WithLabelValues(kind, result).Inc()
		return nil, err
	}
	metrics.AudioSubmissionsTotal.WithLabelValues(kind, "ok").Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishAudioCreated(audio); err != nil {
			s.log.Warn().Err(err).Str("identifier", audio.Identifier).Msg("failed to publish audio event")
		}
	}
	return audio, nil
}

func (s *AudioService) submit(ctx context.Context, text string, in SubmitAudioInput) (*models.Audio, error) {
	createDate := s.now()
	paths, err := s.paths.Allocate(createDate)
	if err != nil {
		return nil, err
	}

	audio := &models.Audio{
		CreateDate: createDate,
		Identifier: uuid.NewString(),
		OwnerID:    in.OwnerID,
	}

	if len(in.Audio) == 0 {
		processed, err := s.synthesize(ctx, text, in.OwnerID, createDate, paths.Processed)
		if err != nil {
			return nil, err
		}
		audio.Text = text
		audio.ProcessedFilepath = processed
	} else {
		if err := storage.WriteFile(paths.Original, in.Audio); err != nil {
			return nil, err
		}
		transcript, err := s.transcribe(ctx, in.Audio, in.AudioFilename, paths.Processed)
		if err != nil {
			s.discard(paths.Original)
			return nil, err
		}
		audio.Text = transcript.Text
		audio.OriginalFilepath = paths.Original
		audio.ProcessedFilepath = transcript.FilePath
	}

	if err := s.audioRepo.Create(audio); err != nil {
		s.discard(audio.OriginalFilepath)
		return nil, fmt.Errorf("failed to save audio: %w", err)
	}

	s.log.Info().
		Str("identifier", audio.Identifier).
		Bool("anonymous", audio.OwnerID == nil).
		Msg("audio created")
	return audio, nil
}

func (s *AudioService) synthesize(ctx context.Context, text string, ownerID *uint, now time.Time, outputPath string) (string, error) {
	ref, refPath, err := s.referenceSample(ownerID, now)
	if err != nil {
		return "", err
	}

	timer := prometheus.NewTimer(metrics.UpstreamRequestDuration.WithLabelValues("tts"))
	processed, err := s.ai.TextToSpeech(ctx, text, ref, filepath.Base(refPath), outputPath)
	timer.ObserveDuration()
	if err != nil {
		s.log.Error().Err(err).Msg("text to speech failed")
		return "", fmt.Errorf("%w: %v", ErrUpstreamProcessingFailed, err)
	}
	return processed, nil
}

func (s *AudioService) transcribe(ctx context.Context, data []byte, filename, outputPath string) (*aiclient.Transcript, error) {
	timer := prometheus.NewTimer(metrics.UpstreamRequestDuration.WithLabelValues("stt_tts"))
	transcript, err := s.ai.SpeechToTextToSpeech(ctx, data, filename, outputPath)
	timer.ObserveDuration()
	if err != nil {
		s.log.Error().Err(err).Msg("speech to speech failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamProcessingFailed, err)
	}
	return transcript, nil
}

// referenceSample picks the voice the text is spoken in: the owner's latest
// recording when readable, else the default sample for the owner's bucket.
func (s *AudioService) referenceSample(ownerID *uint, now time.Time) ([]byte, string, error) {
	if ownerID == nil {
		return readReference(s.refs.Anonymous())
	}

	latest, err := s.audioRepo.LatestByOwner(*ownerID)
	switch {
	case err == nil:
		for _, path := range []string{latest.OriginalFilepath, latest.ProcessedFilepath} {
			if path == "" {
				continue
			}
			if data, err := os.ReadFile(path); err == nil {
				return data, path, nil
			}
			s.log.Debug().Str("path", path).Msg("previous recording unreadable")
		}
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, "", err
	}

	user, err := s.userRepo.GetByID(*ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return readReference(s.refs.Anonymous())
		}
		return nil, "", err
	}
	return readReference(s.refs.Default(user.BirthYear, user.Sex, now))
}

func readReference(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read reference sample: %w", err)
	}
	return data, path, nil
}

func (s *AudioService) discard(path string) {
	if path == "" {
		return
	}
	if err := storage.Remove(path); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("failed to remove upload")
	}
}

// GetByIdentifier returns the audio with identifier or ErrNotFound.
func (s *AudioService) GetByIdentifier(ctx context.Context, identifier string) (*models.Audio, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, identifier)
		switch {
		case err != nil:
			metrics.AudioCacheLookupsTotal.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Msg("audio cache lookup failed")
		case cached != nil:
			metrics.AudioCacheLookupsTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.AudioCacheLookupsTotal.WithLabelValues("miss").Inc()
		}
	}

	audio, err := s.audioRepo.GetByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: audio %s", ErrNotFound, identifier)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, audio); err != nil {
			s.log.Warn().Err(err).Msg("audio cache store failed")
		}
	}
	return audio, nil
}

// ListByOwner returns every audio of ownerID in insertion order.
func (s *AudioService) ListByOwner(ownerID uint) (*models.AudioList, error) {
	audios, count, err := s.audioRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	if audios == nil {
		audios = []models.Audio{}
	}
	return &models.AudioList{Data: audios, Count: count}, nil
}
