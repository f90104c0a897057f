package meetings

import (
	"context"
	"fmt"
	"time"

	"github.com/huddleai/huddle/internal/errs"
	"github.com/huddleai/huddle/internal/models"
)

// Every lifecycle transition is a single conditional UPDATE: "set fields
// WHERE id = ? AND <predecessor condition>". Zero affected rows from a
// duplicate or out-of-order delivery is success-no-op, never an error. That
// makes every transition safe under at-least-once, concurrent webhook
// delivery without any locking.

// MarkActive transitions a meeting to active and records startedAt. Only
// meetings that have not yet started (and are not cancelled) qualify.
func (s *Store) MarkActive(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC()
	return s.transition(ctx, id,
		"status NOT IN ?", []interface{}{[]string{
			models.MeetingStatusCompleted,
			models.MeetingStatusActive,
			models.MeetingStatusCancelled,
			models.MeetingStatusProcessing,
		}},
		map[string]interface{}{
			"status":     models.MeetingStatusActive,
			"started_at": now,
			"updated_at": now,
		})
}

// CompleteAfterLeave transitions a meeting to completed when a participant
// leaves the call. Terminal states are excluded so endedAt is written at most
// once and cancelled meetings stay cancelled.
func (s *Store) CompleteAfterLeave(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC()
	return s.transition(ctx, id,
		"status NOT IN ?", []interface{}{[]string{
			models.MeetingStatusCompleted,
			models.MeetingStatusCancelled,
		}},
		map[string]interface{}{
			"status":     models.MeetingStatusCompleted,
			"ended_at":   now,
			"updated_at": now,
		})
}

// MarkProcessing transitions active -> processing when the session ends.
// A session_ended delivered before session_started (or replayed) affects
// zero rows and is a no-op.
func (s *Store) MarkProcessing(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC()
	return s.transition(ctx, id,
		"status = ?", []interface{}{models.MeetingStatusActive},
		map[string]interface{}{
			"status":     models.MeetingStatusProcessing,
			"ended_at":   now,
			"updated_at": now,
		})
}

// SetTranscriptReady stores the transcript URL and marks the meeting
// completed. The transcription/recording ready pair arrives in arbitrary
// order after the call ends, so neither guards on status.
func (s *Store) SetTranscriptReady(ctx context.Context, id, url string) (bool, error) {
	stored, err := s.encryptURL(url)
	if err != nil {
		return false, err
	}

	return s.transition(ctx, id, "", nil, map[string]interface{}{
		"status":         models.MeetingStatusCompleted,
		"transcript_url": stored,
		"updated_at":     time.Now().UTC(),
	})
}

// SetRecordingReady stores the recording URL and marks the meeting completed.
func (s *Store) SetRecordingReady(ctx context.Context, id, url string) (bool, error) {
	stored, err := s.encryptURL(url)
	if err != nil {
		return false, err
	}

	return s.transition(ctx, id, "", nil, map[string]interface{}{
		"status":        models.MeetingStatusCompleted,
		"recording_url": stored,
		"updated_at":    time.Now().UTC(),
	})
}

// SaveSummary is the transcript pipeline's final step: persist the summary
// and mark the meeting completed. Unconditional — reaching this point means
// the meeting already passed through processing.
func (s *Store) SaveSummary(ctx context.Context, id, summary string) error {
	res := s.db.WithContext(ctx).Model(&models.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.MeetingStatusCompleted,
			"summary":    summary,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save summary: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Newf(errs.KindNotFound, "meeting not found: %s", id)
	}
	return nil
}

// Cancel transitions upcoming -> cancelled. Meetings that already started
// cannot be cancelled.
func (s *Store) Cancel(ctx context.Context, id string) (bool, error) {
	return s.transition(ctx, id,
		"status = ?", []interface{}{models.MeetingStatusUpcoming},
		map[string]interface{}{
			"status":     models.MeetingStatusCancelled,
			"updated_at": time.Now().UTC(),
		})
}

// transition performs one conditional update. Returns (true, nil) when the
// row was updated, (false, nil) for an idempotent no-op, and a NotFound
// error when no meeting with that id exists at all.
func (s *Store) transition(ctx context.Context, id, cond string, condArgs []interface{}, updates map[string]interface{}) (bool, error) {
	query := s.db.WithContext(ctx).Model(&models.Meeting{}).Where("id = ?", id)
	if cond != "" {
		query = query.Where(cond, condArgs...)
	}

	res := query.Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update meeting: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// Zero rows: either the guard rejected the transition (no-op) or the
	// meeting does not exist.
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Meeting{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check meeting existence: %w", err)
	}
	if count == 0 {
		return false, errs.Newf(errs.KindNotFound, "meeting not found: %s", id)
	}

	return false, nil
}

func (s *Store) encryptURL(url string) (string, error) {
	if s.encryptor == nil {
		return url, nil
	}
	encrypted, err := s.encryptor.Encrypt(url)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt URL: %w", err)
	}
	return encrypted, nil
}
