package repositories

import "eartalk/internal/models"

// AudioRepository defines the interface for audio record access.
type AudioRepository interface {
	Create(audio *models.Audio) error
	GetByIdentifier(identifier string) (*models.Audio, error)
	// ListByOwner returns the owner's audios in insertion order and their count.
	ListByOwner(ownerID uint) ([]models.Audio, int64, error)
	// LatestByOwner returns the owner's most recently created audio.
	LatestByOwner(ownerID uint) (*models.Audio, error)
}
