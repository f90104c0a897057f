package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meeting status constants
const (
	MeetingStatusUpcoming   = "upcoming"
	MeetingStatusActive     = "active"
	MeetingStatusProcessing = "processing"
	MeetingStatusCompleted  = "completed"
	MeetingStatusCancelled  = "cancelled"
)

// Meeting represents a scheduled AI-assisted meeting and its lifecycle state.
// Status only ever moves forward: upcoming -> active -> processing -> completed,
// with cancelled and completed as terminal states. All transitions go through
// the meetings.Store conditional updates, never through direct saves.
type Meeting struct {
	ID            string `gorm:"primaryKey;type:text"`
	UserID        string `gorm:"not null;index"`
	User          User   `gorm:"constraint:OnDelete:CASCADE;"`
	AgentID       string `gorm:"index"`
	Name          string `gorm:"not null"`
	Status        string `gorm:"not null;default:'upcoming';index"`
	StartedAt     *time.Time
	EndedAt       *time.Time
	TranscriptURL string `gorm:"column:transcript_url;type:text"` // stored encrypted when an Encryptor is configured
	RecordingURL  string `gorm:"column:recording_url;type:text"`
	Summary       string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = MeetingStatusUpcoming
	}
	return nil
}

// Duration returns the elapsed call time, or zero if the meeting
// has not both started and ended.
func (m *Meeting) Duration() time.Duration {
	if m.StartedAt == nil || m.EndedAt == nil {
		return 0
	}
	return m.EndedAt.Sub(*m.StartedAt)
}
