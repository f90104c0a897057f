package models

import "time"

// User is an application user. Rows are written by the auth layer (external
// to this service); the core reads them for meeting ownership and for speaker
// enrichment during transcript processing.
type User struct {
	ID        string `gorm:"primaryKey;type:text"`
	Name      string `gorm:"not null;default:''"`
	Email     string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
