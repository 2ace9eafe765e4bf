package models

import "time"

// Account represents a registered user identity, keyed by unique email.
type Account struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255)"` // Never serialized
	CreatedAt    time.Time `json:"created_at"`
}
