package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrMissingCredential is returned when a user would be stored with neither
// a password hash nor an OAuth subject.
var ErrMissingCredential = errors.New("user needs a password or an oauth identity")

// User is an account, either local (email + password) or bound to an OAuth subject.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          *string   `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	BirthYear      string    `json:"birthyear" gorm:"column:birthyear;type:varchar(4)"`
	Sex            bool      `json:"sex"` // true: male, false: female
	HashedPassword *string   `json:"-" gorm:"type:varchar(255)"`
	OAuthID        *string   `json:"-" gorm:"column:oauth_id;uniqueIndex;type:varchar(255)"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// BeforeCreate enforces that every stored user can authenticate somehow.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if (u.HashedPassword == nil || *u.HashedPassword == "") && (u.OAuthID == nil || *u.OAuthID == "") {
		return ErrMissingCredential
	}
	return nil
}

// HasPassword reports whether the user can log in locally.
func (u *User) HasPassword() bool {
	return u.HashedPassword != nil && *u.HashedPassword != ""
}
