package repositories

import (
	"errors"
	"fmt"

	"eartalk/internal/models"

	"gorm.io/gorm"
)

// GORMAudioRepository is a GORM implementation of AudioRepository.
type GORMAudioRepository struct {
	db *gorm.DB
}

// NewGORMAudioRepository creates a new instance of GORMAudioRepository.
func NewGORMAudioRepository(db *gorm.DB) *GORMAudioRepository {
	return &GORMAudioRepository{
		db: db,
	}
}

// Create inserts a new audio record.
func (r *GORMAudioRepository) Create(audio *models.Audio) error {
	if err := r.db.Create(audio).Error; err != nil {
		return fmt.Errorf("failed to create audio: %w", err)
	}
	return nil
}

// GetByIdentifier retrieves an audio by its public identifier.
func (r *GORMAudioRepository) GetByIdentifier(identifier string) (*models.Audio, error) {
	var audio models.Audio
	if err := r.db.First(&audio, "identifier = ?", identifier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("audio %s: %w", identifier, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get audio %s: %w", identifier, err)
	}
	return &audio, nil
}

// ListByOwner retrieves every audio owned by ownerID, oldest first.
func (r *GORMAudioRepository) ListByOwner(ownerID uint) ([]models.Audio, int64, error) {
	var audios []models.Audio
	if err := r.db.Where("owner_id = ?", ownerID).Order("id ASC").Find(&audios).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audios for user %d: %w", ownerID, err)
	}
	return audios, int64(len(audios)), nil
}

// LatestByOwner retrieves the newest audio owned by ownerID.
func (r *GORMAudioRepository) LatestByOwner(ownerID uint) (*models.Audio, error) {
	var audio models.Audio
	err := r.db.Where("owner_id = ?", ownerID).
		Order("create_date DESC").
		Order("id DESC").
		First(&audio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("latest audio of user %d: %w", ownerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest audio of user %d: %w", ownerID, err)
	}
	return &audio, nil
}
