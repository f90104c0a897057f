package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskProcessMeeting = "meeting:process"
)

// processMeetingPayload is the queued unit of work: one meeting's transcript
// to turn into a summary.
type processMeetingPayload struct {
	MeetingID     string `json:"meeting_id"`
	TranscriptURL string `json:"transcript_url"`
}

// Client enqueues background tasks. One instance is constructed at process
// start and handed to whoever needs to submit work.
type Client struct {
	client *asynq.Client
}

// NewClient creates a task client connected to the given Redis instance.
func NewClient(redisURL string) (*Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return &Client{client: asynq.NewClient(opt)}, nil
}

// Close closes the task client connection gracefully.
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueProcessMeeting queues a transcript-processing run for the meeting.
// The whole pipeline is retry-safe, so failed runs retry up to 5 times with
// asynq's exponential backoff; that is also the answer to a transcript URL
// that is temporarily unreachable.
func (c *Client) EnqueueProcessMeeting(meetingID, transcriptURL string) error {
	payload, err := json.Marshal(processMeetingPayload{
		MeetingID:     meetingID,
		TranscriptURL: transcriptURL,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(
		TaskProcessMeeting,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(24*time.Hour),
	)

	_, err = c.client.Enqueue(task)
	return err
}
