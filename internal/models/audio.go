package models

import "time"

// Audio is a single voice-note submission. Records are never modified after creation.
type Audio struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Text              string    `json:"text" gorm:"type:text"`
	OriginalFilepath  string    `json:"original_filepath"`
	ProcessedFilepath string    `json:"processed_filepath"`
	Identifier        string    `json:"identifier" gorm:"uniqueIndex;type:varchar(36);not null"`
	OwnerID           *uint     `json:"owner_id" gorm:"index"`
	CreateDate        time.Time `json:"create_date" gorm:"index"`
}

// AudioList is the body of owner listings.
type AudioList struct {
	Data  []Audio `json:"data"`
	Count int64   `json:"count"`
}
