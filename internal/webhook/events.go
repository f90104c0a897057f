// Package webhook ingests video-platform callbacks and advances meetings
// through the lifecycle state machine.
package webhook

import (
	"encoding/json"
	"strings"

	"github.com/huddleai/huddle/internal/errs"
)

// Recognized callback type discriminators.
const (
	TypeSessionStarted     = "call.session_started"
	TypeParticipantLeft    = "call.session_participant_left"
	TypeSessionEnded       = "call.session_ended"
	TypeTranscriptionReady = "call.transcription_ready"
	TypeRecordingReady     = "call.recording_ready"
)

// Event is the closed union of recognized callbacks. The dispatcher switches
// exhaustively over the concrete types; UnknownEvent is the explicit default
// arm that keeps unrecognized callbacks a silent success (forward
// compatibility with new platform event types).
type Event interface {
	isEvent()
}

// SessionStartedEvent fires when the first participant joins the call.
type SessionStartedEvent struct {
	MeetingID string
}

// ParticipantLeftEvent fires when a participant leaves the call.
type ParticipantLeftEvent struct {
	MeetingID string
}

// SessionEndedEvent fires when the call session ends.
type SessionEndedEvent struct {
	MeetingID string
}

// TranscriptionReadyEvent carries the URL of the finished transcript file.
type TranscriptionReadyEvent struct {
	MeetingID     string
	TranscriptURL string
}

// RecordingReadyEvent carries the URL of the finished recording.
type RecordingReadyEvent struct {
	MeetingID    string
	RecordingURL string
}

// UnknownEvent is any callback type this service does not handle.
type UnknownEvent struct {
	Type string
}

func (SessionStartedEvent) isEvent()     {}
func (ParticipantLeftEvent) isEvent()    {}
func (SessionEndedEvent) isEvent()       {}
func (TranscriptionReadyEvent) isEvent() {}
func (RecordingReadyEvent) isEvent()     {}
func (UnknownEvent) isEvent()            {}

// payload mirrors the platform's callback body, covering only the fields the
// dispatcher reads.
type payload struct {
	Type string `json:"type"`
	Call struct {
		Custom struct {
			MeetingID string `json:"meetingId"`
		} `json:"custom"`
	} `json:"call"`
	CallCID           string `json:"call_cid"`
	CallTranscription struct {
		URL string `json:"url"`
	} `json:"call_transcription"`
	CallRecording struct {
		URL string `json:"url"`
	} `json:"call_recording"`
}

// ParseEvent decodes a callback body into the event union. Malformed JSON is
// a validation error; a recognized type with no extractable meeting id is
// too. Unrecognized types parse into UnknownEvent.
func ParseEvent(body []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errs.Wrap(errs.KindValidation, err, "invalid JSON payload")
	}

	switch p.Type {
	case TypeSessionStarted:
		id := p.Call.Custom.MeetingID
		if id == "" {
			return nil, errs.New(errs.KindValidation, "missing meeting ID")
		}
		return SessionStartedEvent{MeetingID: id}, nil

	case TypeParticipantLeft:
		id := meetingIDFromCID(p.CallCID)
		if id == "" {
			return nil, errs.New(errs.KindValidation, "missing meeting ID")
		}
		return ParticipantLeftEvent{MeetingID: id}, nil

	case TypeSessionEnded:
		id := p.Call.Custom.MeetingID
		if id == "" {
			return nil, errs.New(errs.KindValidation, "missing meeting ID")
		}
		return SessionEndedEvent{MeetingID: id}, nil

	case TypeTranscriptionReady:
		id := meetingIDFromCID(p.CallCID)
		if id == "" {
			return nil, errs.New(errs.KindValidation, "missing meeting ID")
		}
		if p.CallTranscription.URL == "" {
			return nil, errs.New(errs.KindValidation, "missing transcript URL")
		}
		return TranscriptionReadyEvent{MeetingID: id, TranscriptURL: p.CallTranscription.URL}, nil

	case TypeRecordingReady:
		id := meetingIDFromCID(p.CallCID)
		if id == "" {
			return nil, errs.New(errs.KindValidation, "missing meeting ID")
		}
		return RecordingReadyEvent{MeetingID: id, RecordingURL: p.CallRecording.URL}, nil

	default:
		return UnknownEvent{Type: p.Type}, nil
	}
}

// meetingIDFromCID extracts the meeting id from a call session identifier:
// the first colon-delimited segment.
func meetingIDFromCID(cid string) string {
	id, _, _ := strings.Cut(cid, ":")
	return id
}

// MeetingID returns the meeting id an event targets, or "" for unknown
// events. Used for audit logging.
func MeetingID(ev Event) string {
	switch e := ev.(type) {
	case SessionStartedEvent:
		return e.MeetingID
	case ParticipantLeftEvent:
		return e.MeetingID
	case SessionEndedEvent:
		return e.MeetingID
	case TranscriptionReadyEvent:
		return e.MeetingID
	case RecordingReadyEvent:
		return e.MeetingID
	default:
		return ""
	}
}
