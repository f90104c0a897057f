package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/huddleai/huddle/internal/meetings"
	"github.com/huddleai/huddle/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const validSignature = "valid-signature"

type fakeVideo struct {
	connectErr error
	endErr     error

	connected []connectCall
	ended     []string
}

type connectCall struct {
	meetingID    string
	agentUserID  string
	instructions string
}

func (f *fakeVideo) VerifySignature(body []byte, signature string) bool {
	return signature == validSignature
}

func (f *fakeVideo) ConnectAgent(ctx context.Context, meetingID, agentUserID, instructions string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = append(f.connected, connectCall{meetingID, agentUserID, instructions})
	return nil
}

func (f *fakeVideo) EndCall(ctx context.Context, meetingID string) error {
	if f.endErr != nil {
		return f.endErr
	}
	f.ended = append(f.ended, meetingID)
	return nil
}

type fakeEnqueuer struct {
	err   error
	calls []enqueueCall
}

type enqueueCall struct {
	meetingID     string
	transcriptURL string
}

func (f *fakeEnqueuer) EnqueueProcessMeeting(meetingID, transcriptURL string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, enqueueCall{meetingID, transcriptURL})
	return nil
}

type fixture struct {
	db       *gorm.DB
	video    *fakeVideo
	enqueuer *fakeEnqueuer
	router   *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Agent{}, &models.Meeting{}, &models.WebhookEventLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := db.Create(&models.User{ID: "u1", Name: "Alice", Email: "alice@example.com"}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	video := &fakeVideo{}
	enqueuer := &fakeEnqueuer{}

	deps := &Deps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		DB:       db,
		Meetings: meetings.NewStore(db, nil),
		Video:    video,
		Enqueuer: enqueuer,
	}

	router := gin.New()
	router.POST("/api/webhook", Handler(deps))

	return &fixture{db: db, video: video, enqueuer: enqueuer, router: router}
}

func (f *fixture) createMeeting(t *testing.T, id, status, agentID string) {
	t.Helper()
	m := models.Meeting{ID: id, UserID: "u1", AgentID: agentID, Name: "Sync", Status: status}
	if err := f.db.Create(&m).Error; err != nil {
		t.Fatalf("create meeting: %v", err)
	}
}

func (f *fixture) createAgent(t *testing.T, id, name, instructions string) {
	t.Helper()
	a := models.Agent{ID: id, UserID: "u1", Name: name, Instructions: instructions}
	if err := f.db.Create(&a).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}
}

func (f *fixture) post(t *testing.T, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader([]byte(body)))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func signedHeaders() map[string]string {
	return map[string]string{
		"x-signature": validSignature,
		"x-api-key":   "key123",
	}
}

func (f *fixture) status(t *testing.T, id string) string {
	t.Helper()
	var m models.Meeting
	if err := f.db.First(&m, "id = ?", id).Error; err != nil {
		t.Fatalf("fetch meeting: %v", err)
	}
	return m.Status
}

func TestMissingHeaders(t *testing.T) {
	f := newFixture(t)

	rr := f.post(t, `{}`, map[string]string{"x-signature": validSignature})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without api key, got %d", rr.Code)
	}

	rr = f.post(t, `{}`, map[string]string{"x-api-key": "key123"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without signature, got %d", rr.Code)
	}
}

func TestInvalidSignature(t *testing.T) {
	f := newFixture(t)

	rr := f.post(t, `{}`, map[string]string{"x-signature": "forged", "x-api-key": "key123"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}

func TestInvalidJSON(t *testing.T) {
	f := newFixture(t)

	rr := f.post(t, `{not json`, signedHeaders())
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestUnknownEventTypeIsAccepted(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusUpcoming, "a1")

	rr := f.post(t, `{"type":"call.reaction_added"}`, signedHeaders())
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for unknown type, got %d", rr.Code)
	}
	if got := f.status(t, "m1"); got != models.MeetingStatusUpcoming {
		t.Errorf("expected no state change, got %s", got)
	}
}

func TestSessionStarted(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusUpcoming, "a1")
	f.createAgent(t, "a1", "Note Taker", "take notes quietly")

	body := `{"type":"call.session_started","call":{"custom":{"meetingId":"m1"}}}`
	rr := f.post(t, body, signedHeaders())

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var m models.Meeting
	if err := f.db.First(&m, "id = ?", "m1").Error; err != nil {
		t.Fatalf("fetch meeting: %v", err)
	}
	if m.Status != models.MeetingStatusActive {
		t.Errorf("expected active, got %s", m.Status)
	}
	if m.StartedAt == nil {
		t.Error("expected started_at set")
	}

	if len(f.video.connected) != 1 {
		t.Fatalf("expected one connect call, got %d", len(f.video.connected))
	}
	call := f.video.connected[0]
	if call.meetingID != "m1" || call.agentUserID != "a1" || call.instructions != "take notes quietly" {
		t.Errorf("unexpected connect call: %+v", call)
	}
}

func TestSessionStartedReplayIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusUpcoming, "a1")
	f.createAgent(t, "a1", "Note Taker", "take notes")

	body := `{"type":"call.session_started","call":{"custom":{"meetingId":"m1"}}}`
	if rr := f.post(t, body, signedHeaders()); rr.Code != http.StatusOK {
		t.Fatalf("first delivery: expected 200, got %d", rr.Code)
	}

	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusOK {
		t.Errorf("replay: expected 200, got %d", rr.Code)
	}
	if len(f.video.connected) != 1 {
		t.Errorf("expected no second connect call, got %d", len(f.video.connected))
	}
}

func TestSessionStartedMissingMeetingID(t *testing.T) {
	f := newFixture(t)

	rr := f.post(t, `{"type":"call.session_started","call":{"custom":{}}}`, signedHeaders())
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestSessionStartedMeetingNotFound(t *testing.T) {
	f := newFixture(t)

	body := `{"type":"call.session_started","call":{"custom":{"meetingId":"missing"}}}`
	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestSessionStartedWithoutAgentConfigured(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusUpcoming, "")

	body := `{"type":"call.session_started","call":{"custom":{"meetingId":"m1"}}}`
	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for meeting without agent, got %d", rr.Code)
	}
}

func TestSessionStartedAgentRowMissing(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusUpcoming, "a-gone")

	body := `{"type":"call.session_started","call":{"custom":{"meetingId":"m1"}}}`
	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing agent row, got %d", rr.Code)
	}
}

func TestSessionEndedRequiresActive(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusUpcoming, "a1")

	// session_ended before session_started: guard rejects, still 200.
	body := `{"type":"call.session_ended","call":{"custom":{"meetingId":"m1"}}}`
	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 no-op, got %d", rr.Code)
	}
	if got := f.status(t, "m1"); got != models.MeetingStatusUpcoming {
		t.Errorf("expected upcoming, got %s", got)
	}
}

func TestSessionEndedFromActive(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusActive, "a1")

	body := `{"type":"call.session_ended","call":{"custom":{"meetingId":"m1"}}}`
	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
	if got := f.status(t, "m1"); got != models.MeetingStatusProcessing {
		t.Errorf("expected processing, got %s", got)
	}
}

func TestParticipantLeftEndsCallAndCompletes(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusActive, "a1")

	body := `{"type":"call.session_participant_left","call_cid":"m1:default"}`
	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	if len(f.video.ended) != 1 || f.video.ended[0] != "m1" {
		t.Errorf("expected end call for m1, got %v", f.video.ended)
	}
	if got := f.status(t, "m1"); got != models.MeetingStatusCompleted {
		t.Errorf("expected completed, got %s", got)
	}
}

func TestParticipantLeftEndCallFailure(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusActive, "a1")
	f.video.endErr = errors.New("platform unavailable")

	body := `{"type":"call.session_participant_left","call_cid":"m1:default"}`
	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rr.Code)
	}

	// The transition never ran, so platform redelivery can retry cleanly.
	if got := f.status(t, "m1"); got != models.MeetingStatusActive {
		t.Errorf("expected active, got %s", got)
	}
}

func TestTranscriptionReady(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusProcessing, "a1")

	body := `{"type":"call.transcription_ready","call_cid":"m1:default","call_transcription":{"url":"https://cdn.example.com/t.jsonl"}}`
	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var m models.Meeting
	if err := f.db.First(&m, "id = ?", "m1").Error; err != nil {
		t.Fatalf("fetch meeting: %v", err)
	}
	if m.Status != models.MeetingStatusCompleted {
		t.Errorf("expected completed, got %s", m.Status)
	}
	if m.TranscriptURL != "https://cdn.example.com/t.jsonl" {
		t.Errorf("unexpected transcript URL: %s", m.TranscriptURL)
	}

	if len(f.enqueuer.calls) != 1 {
		t.Fatalf("expected one pipeline enqueue, got %d", len(f.enqueuer.calls))
	}
	if f.enqueuer.calls[0].meetingID != "m1" || f.enqueuer.calls[0].transcriptURL != "https://cdn.example.com/t.jsonl" {
		t.Errorf("unexpected enqueue call: %+v", f.enqueuer.calls[0])
	}
}

func TestTranscriptionReadyEnqueueFailureStill200(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusProcessing, "a1")
	f.enqueuer.err = errors.New("redis down")

	body := `{"type":"call.transcription_ready","call_cid":"m1:default","call_transcription":{"url":"https://cdn.example.com/t.jsonl"}}`
	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 despite enqueue failure, got %d", rr.Code)
	}
	if got := f.status(t, "m1"); got != models.MeetingStatusCompleted {
		t.Errorf("expected transition to have applied, got %s", got)
	}
}

func TestRecordingReady(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusCompleted, "a1")

	body := `{"type":"call.recording_ready","call_cid":"m1:default","call_recording":{"url":"https://cdn.example.com/r.mp4"}}`
	rr := f.post(t, body, signedHeaders())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var m models.Meeting
	if err := f.db.First(&m, "id = ?", "m1").Error; err != nil {
		t.Fatalf("fetch meeting: %v", err)
	}
	if m.RecordingURL != "https://cdn.example.com/r.mp4" {
		t.Errorf("unexpected recording URL: %s", m.RecordingURL)
	}
}

func TestAuditLogRecordsEvents(t *testing.T) {
	f := newFixture(t)
	f.createMeeting(t, "m1", models.MeetingStatusActive, "a1")

	body := `{"type":"call.session_ended","call":{"custom":{"meetingId":"m1"}}}`
	if rr := f.post(t, body, signedHeaders()); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var logs []models.WebhookEventLog
	if err := f.db.Find(&logs).Error; err != nil {
		t.Fatalf("fetch audit log: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected one audit row, got %d", len(logs))
	}
	if logs[0].EventType != TypeSessionEnded || logs[0].MeetingID != "m1" {
		t.Errorf("unexpected audit row: %+v", logs[0])
	}

	var payload map[string]any
	if err := json.Unmarshal(logs[0].Payload, &payload); err != nil {
		t.Fatalf("audit payload not JSON: %v", err)
	}
	if payload["type"] != TypeSessionEnded {
		t.Errorf("unexpected audit payload: %v", payload)
	}
}

func TestParseEventCIDExtraction(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"call.session_participant_left","call_cid":"m42:default"}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	left, ok := ev.(ParticipantLeftEvent)
	if !ok {
		t.Fatalf("expected ParticipantLeftEvent, got %T", ev)
	}
	if left.MeetingID != "m42" {
		t.Errorf("expected m42, got %s", left.MeetingID)
	}

	if _, err := ParseEvent([]byte(`{"type":"call.session_participant_left","call_cid":""}`)); err == nil {
		t.Error("expected error for empty call_cid")
	}
}
