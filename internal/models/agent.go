package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Agent is an AI participant configuration. Instructions are pushed to the
// video platform as session configuration when the agent joins a call.
type Agent struct {
	ID           string `gorm:"primaryKey;type:text"`
	UserID       string `gorm:"not null;index"`
	User         User   `gorm:"constraint:OnDelete:CASCADE;"`
	Name         string `gorm:"not null"`
	Instructions string `gorm:"not null;type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
