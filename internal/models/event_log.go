package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEventLog is a best-effort audit record of every authenticated
// callback received from the video platform. Writes never block or fail
// webhook handling; the log exists for debugging duplicate and out-of-order
// delivery.
type WebhookEventLog struct {
	ID         uint           `gorm:"primaryKey"`
	EventType  string         `gorm:"not null;index"`
	MeetingID  string         `gorm:"index"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	ReceivedAt time.Time      `gorm:"not null"`
}

// TableName keeps the audit table name explicit.
func (WebhookEventLog) TableName() string {
	return "webhook_events"
}
