package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huddleai/huddle/internal/errs"
	"github.com/huddleai/huddle/internal/events"
	"github.com/huddleai/huddle/internal/meetings"
	"github.com/huddleai/huddle/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxBodySize bounds webhook request bodies.
const maxBodySize = 1 << 20

// VideoClient is the video-platform collaborator as seen by the dispatcher.
type VideoClient interface {
	VerifySignature(body []byte, signature string) bool
	ConnectAgent(ctx context.Context, meetingID, agentUserID, instructions string) error
	EndCall(ctx context.Context, meetingID string) error
}

// Enqueuer submits transcript-processing work to the background worker. The
// dispatcher never waits for the pipeline.
type Enqueuer interface {
	EnqueueProcessMeeting(meetingID, transcriptURL string) error
}

// Deps carries everything the dispatcher needs. Constructed once at process
// start; fakes slot in for tests.
type Deps struct {
	Logger   *slog.Logger
	DB       *gorm.DB
	Meetings *meetings.Store
	Video    VideoClient
	Enqueuer Enqueuer
	Events   *events.Publisher
}

// Handler returns the webhook endpoint. Deliveries arrive concurrently, out
// of order, and possibly duplicated; every path that reaches a terminal
// decision (including no-ops on replayed events) answers 200.
func Handler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		signature := c.GetHeader("x-signature")
		apiKey := c.GetHeader("x-api-key")

		if signature == "" || apiKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing signature or API key"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
			return
		}

		if !deps.Video.VerifySignature(body, signature) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}

		ev, err := ParseEvent(body)
		if err != nil {
			deps.Logger.Warn("Rejected webhook payload", "error", err.Error())
			c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		deps.auditLog(c.Request.Context(), ev, body)

		if err := deps.dispatch(c.Request.Context(), ev); err != nil {
			deps.Logger.Error("Webhook handling failed",
				"event_type", eventType(ev),
				"meeting_id", MeetingID(ev),
				"error", err.Error(),
			)
			c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// dispatch routes one parsed event to its transition and side effects.
func (deps *Deps) dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case SessionStartedEvent:
		return deps.handleSessionStarted(ctx, e)
	case ParticipantLeftEvent:
		return deps.handleParticipantLeft(ctx, e)
	case SessionEndedEvent:
		return deps.handleSessionEnded(ctx, e)
	case TranscriptionReadyEvent:
		return deps.handleTranscriptionReady(ctx, e)
	case RecordingReadyEvent:
		return deps.handleRecordingReady(ctx, e)
	default:
		// Unrecognized event types are accepted silently so new platform
		// events never break delivery.
		deps.Logger.Debug("Ignoring unrecognized webhook event", "event_type", eventType(ev))
		return nil
	}
}

func (deps *Deps) handleSessionStarted(ctx context.Context, e SessionStartedEvent) error {
	meeting, err := deps.Meetings.Get(ctx, e.MeetingID)
	if err != nil {
		return err
	}

	started, err := deps.Meetings.MarkActive(ctx, e.MeetingID)
	if err != nil {
		return err
	}
	if !started {
		// Duplicate or late delivery; the meeting is already active or past
		// it. No side effects.
		deps.Logger.Info("session_started replay ignored", "meeting_id", e.MeetingID, "status", meeting.Status)
		return nil
	}

	if meeting.AgentID == "" {
		return errs.New(errs.KindValidation, "meeting has no agent configured")
	}

	var agent models.Agent
	if err := deps.DB.WithContext(ctx).First(&agent, "id = ?", meeting.AgentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Newf(errs.KindNotFound, "agent not found: %s", meeting.AgentID)
		}
		return err
	}

	if err := deps.Video.ConnectAgent(ctx, e.MeetingID, agent.ID, agent.Instructions); err != nil {
		return errs.Wrap(errs.KindUpstream, err, "failed to connect agent to call")
	}

	deps.publish(ctx, e.MeetingID, events.EventSessionStarted, models.MeetingStatusActive)
	return nil
}

func (deps *Deps) handleParticipantLeft(ctx context.Context, e ParticipantLeftEvent) error {
	// End the call first. If this fails the transition never happens, so the
	// platform's redelivery retries the whole event.
	if err := deps.Video.EndCall(ctx, e.MeetingID); err != nil {
		return errs.Wrap(errs.KindUpstream, err, "failed to end call")
	}

	completed, err := deps.Meetings.CompleteAfterLeave(ctx, e.MeetingID)
	if err != nil {
		return err
	}
	if completed {
		deps.publish(ctx, e.MeetingID, events.EventParticipantLeft, models.MeetingStatusCompleted)
	}
	return nil
}

func (deps *Deps) handleSessionEnded(ctx context.Context, e SessionEndedEvent) error {
	processing, err := deps.Meetings.MarkProcessing(ctx, e.MeetingID)
	if err != nil {
		return err
	}
	if processing {
		deps.publish(ctx, e.MeetingID, events.EventSessionEnded, models.MeetingStatusProcessing)
	}
	return nil
}

func (deps *Deps) handleTranscriptionReady(ctx context.Context, e TranscriptionReadyEvent) error {
	updated, err := deps.Meetings.SetTranscriptReady(ctx, e.MeetingID, e.TranscriptURL)
	if err != nil {
		return err
	}
	if updated {
		deps.publish(ctx, e.MeetingID, events.EventTranscriptReady, models.MeetingStatusCompleted)
	}

	// Fire and forget: the pipeline runs on the worker, never on the webhook
	// request path. A failed enqueue is logged, not surfaced — the platform
	// already got its answer and the audit log retains the URL.
	if err := deps.Enqueuer.EnqueueProcessMeeting(e.MeetingID, e.TranscriptURL); err != nil {
		deps.Logger.Error("Failed to enqueue transcript processing",
			"meeting_id", e.MeetingID,
			"error", err.Error(),
		)
	}

	return nil
}

func (deps *Deps) handleRecordingReady(ctx context.Context, e RecordingReadyEvent) error {
	updated, err := deps.Meetings.SetRecordingReady(ctx, e.MeetingID, e.RecordingURL)
	if err != nil {
		return err
	}
	if updated {
		deps.publish(ctx, e.MeetingID, events.EventRecordingReady, models.MeetingStatusCompleted)
	}
	return nil
}

// auditLog appends the authenticated event to webhook_events. Best effort: a
// failed insert is logged and the callback proceeds.
func (deps *Deps) auditLog(ctx context.Context, ev Event, body []byte) {
	entry := models.WebhookEventLog{
		EventType:  eventType(ev),
		MeetingID:  MeetingID(ev),
		Payload:    datatypes.JSON(body),
		ReceivedAt: time.Now().UTC(),
	}
	if err := deps.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		deps.Logger.Warn("Failed to record webhook event", "error", err.Error())
	}
}

// publish emits a lifecycle event to the Redis stream, best effort.
func (deps *Deps) publish(ctx context.Context, meetingID, event, status string) {
	if _, err := deps.Events.PublishLifecycleEvent(ctx, events.LifecycleEvent{
		MeetingID: meetingID,
		Event:     event,
		Status:    status,
	}); err != nil {
		deps.Logger.Warn("Failed to publish lifecycle event",
			"meeting_id", meetingID,
			"event", event,
			"error", err.Error(),
		)
	}
}

func eventType(ev Event) string {
	switch e := ev.(type) {
	case SessionStartedEvent:
		return TypeSessionStarted
	case ParticipantLeftEvent:
		return TypeParticipantLeft
	case SessionEndedEvent:
		return TypeSessionEnded
	case TranscriptionReadyEvent:
		return TypeTranscriptionReady
	case RecordingReadyEvent:
		return TypeRecordingReady
	case UnknownEvent:
		return e.Type
	default:
		return "unknown"
	}
}
