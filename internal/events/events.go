// Package events publishes meeting lifecycle events to a Redis Stream for
// external integrations (notification bots, analytics sidecars) to consume.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stream name constant
const StreamMeetingLifecycle = "meeting:lifecycle"

// Schema version constant
const SchemaVersionV1 = "v1"

// Lifecycle event name constants
const (
	EventSessionStarted  = "meeting.session_started"
	EventParticipantLeft = "meeting.participant_left"
	EventSessionEnded    = "meeting.session_ended"
	EventTranscriptReady = "meeting.transcript_ready"
	EventRecordingReady  = "meeting.recording_ready"
	EventSummaryReady    = "meeting.summary_ready"
)

// LifecycleEvent is one meeting state change, as published to the stream.
type LifecycleEvent struct {
	MeetingID  string    `json:"meeting_id"`
	Event      string    `json:"event"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher publishes lifecycle events to Redis Streams. All methods are
// nil-receiver safe so callers can run without Redis streaming configured.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher creates a new Publisher instance
func NewPublisher(redisURL string) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Publisher{rdb: redis.NewClient(opts)}, nil
}

// PublishLifecycleEvent publishes one event to the stream and returns the
// stream message id. A nil Publisher silently drops the event.
func (p *Publisher) PublishLifecycleEvent(ctx context.Context, ev LifecycleEvent) (string, error) {
	if p == nil {
		return "", nil
	}

	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	result := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamMeetingLifecycle,
		MaxLen: 10000,
		Approx: true,
		ID:     "*", // auto-generate ID
		Values: map[string]interface{}{
			"payload":        string(payload),
			"published_at":   time.Now().Unix(),
			"schema_version": SchemaVersionV1,
		},
	})

	if result.Err() != nil {
		return "", fmt.Errorf("failed to publish to stream: %w", result.Err())
	}

	return result.Val(), nil
}

// Close closes the Redis client connection
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}
