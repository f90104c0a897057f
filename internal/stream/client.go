// Package stream is the video-platform collaborator: webhook signature
// verification plus the two call-control operations the webhook dispatcher
// needs (attaching the AI agent to a live call, ending a call).
package stream

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/huddleai/huddle/internal/errs"
)

// Client handles communication with the video platform API
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewClient creates a new video platform client with the given credentials
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// VerifySignature reports whether signature is a valid HMAC-SHA256 hex digest
// of body under the API secret. It never panics and never returns an error:
// any malformed input is simply an invalid signature.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	if c.apiSecret == "" || signature == "" {
		return false
	}

	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write(body)

	return hmac.Equal(mac.Sum(nil), expected)
}

// Sign computes the webhook signature for body. Used by tests and by tools
// that replay captured webhook payloads.
func (c *Client) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ConnectAgent attaches the AI participant identified by agentUserID to the
// call for meetingID and pushes the agent's instructions as session
// configuration.
func (c *Client) ConnectAgent(ctx context.Context, meetingID, agentUserID, instructions string) error {
	body := map[string]string{
		"agent_user_id": agentUserID,
		"instructions":  instructions,
	}

	path := fmt.Sprintf("/call/default/%s/agent", meetingID)
	return c.post(ctx, path, body)
}

// EndCall terminates the call for meetingID on the platform side.
func (c *Client) EndCall(ctx context.Context, meetingID string) error {
	path := fmt.Sprintf("/call/default/%s/mark_ended", meetingID)
	return c.post(ctx, path, map[string]string{})
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s%s?api_key=%s", c.baseURL, path, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiSecret)
	req.Header.Set("stream-auth-type", "secret")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(errs.KindUpstream, err, "video platform request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errs.Newf(errs.KindUpstream, "video platform returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
