// Package meetings holds the meeting aggregate: persistence, the lifecycle
// state machine driven by webhook events, and the dashboard handlers.
package meetings

import (
	"context"
	"errors"
	"fmt"

	"github.com/huddleai/huddle/internal/crypto"
	"github.com/huddleai/huddle/internal/errs"
	"github.com/huddleai/huddle/internal/models"
	"gorm.io/gorm"
)

// Store wraps all meeting reads and writes. Lifecycle transitions go through
// the conditional updates in lifecycle.go; nothing else may change status.
// The encryptor is optional: when nil, transcript and recording URLs are
// stored in plaintext.
type Store struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
}

// NewStore creates a meeting store backed by db.
func NewStore(db *gorm.DB, encryptor *crypto.Encryptor) *Store {
	return &Store{db: db, encryptor: encryptor}
}

// Get loads one meeting with media URLs decrypted.
func (s *Store) Get(ctx context.Context, id string) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := s.db.WithContext(ctx).First(&meeting, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "meeting not found: %s", id)
		}
		return nil, fmt.Errorf("failed to fetch meeting: %w", err)
	}

	if err := s.decryptURLs(&meeting); err != nil {
		return nil, err
	}

	return &meeting, nil
}

// Create inserts a new meeting. Status defaults to upcoming.
func (s *Store) Create(ctx context.Context, meeting *models.Meeting) error {
	if err := s.db.WithContext(ctx).Create(meeting).Error; err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

// ListParams filter and paginate the dashboard meeting list.
type ListParams struct {
	UserID   string
	Search   string
	Status   string
	AgentID  string
	Page     int
	PageSize int
}

// List returns one page of meetings plus the unpaginated total count.
func (s *Store) List(ctx context.Context, params ListParams) ([]models.Meeting, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 10
	}

	query := s.db.WithContext(ctx).Model(&models.Meeting{})
	if params.UserID != "" {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.AgentID != "" {
		query = query.Where("agent_id = ?", params.AgentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count meetings: %w", err)
	}

	var meetings []models.Meeting
	err := query.
		Order("created_at DESC").
		Limit(params.PageSize).
		Offset((params.Page - 1) * params.PageSize).
		Find(&meetings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list meetings: %w", err)
	}

	for i := range meetings {
		if err := s.decryptURLs(&meetings[i]); err != nil {
			return nil, 0, err
		}
	}

	return meetings, total, nil
}

// Update changes the mutable CRUD fields (name, agent). Lifecycle fields are
// off limits here.
func (s *Store) Update(ctx context.Context, id string, name, agentID string) (*models.Meeting, error) {
	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if agentID != "" {
		updates["agent_id"] = agentID
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Meeting{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update meeting: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, errs.Newf(errs.KindNotFound, "meeting not found: %s", id)
		}
	}

	return s.Get(ctx, id)
}

// Delete removes a meeting. Dashboard-only; the lifecycle core never deletes.
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Meeting{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete meeting: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Newf(errs.KindNotFound, "meeting not found: %s", id)
	}
	return nil
}

func (s *Store) decryptURLs(meeting *models.Meeting) error {
	if s.encryptor == nil {
		return nil
	}

	transcriptURL, err := s.encryptor.Decrypt(meeting.TranscriptURL)
	if err != nil {
		return fmt.Errorf("failed to decrypt transcript URL: %w", err)
	}
	meeting.TranscriptURL = transcriptURL

	recordingURL, err := s.encryptor.Decrypt(meeting.RecordingURL)
	if err != nil {
		return fmt.Errorf("failed to decrypt recording URL: %w", err)
	}
	meeting.RecordingURL = recordingURL

	return nil
}
