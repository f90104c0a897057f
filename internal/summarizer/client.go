// Package summarizer turns an enriched meeting transcript into a
// human-readable summary via an OpenAI-compatible completion API.
package summarizer

import (
	"context"
	"regexp"
	"strings"

	"github.com/huddleai/huddle/internal/config"
	"github.com/huddleai/huddle/internal/errs"
	openai "github.com/sashabaranov/go-openai"
)

// FallbackSummary is persisted when summary generation fails. The pipeline
// never aborts on a generation failure; the meeting still completes.
const FallbackSummary = "Meeting summary could not be automatically generated due to a processing error. Please review the transcript manually for key discussion points and action items."

// summaryPrefix strips boilerplate the model sometimes echoes back.
var summaryPrefix = regexp.MustCompile(`(?i)^(Summary:|Meeting Summary:)\s*`)

// Client calls the text-completion service.
type Client struct {
	api   *openai.Client
	model string
	style string
}

// NewClient creates a summarization client. baseURL overrides the API
// endpoint when non-empty (used in tests and for self-hosted gateways).
func NewClient(apiKey, baseURL, model, style string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
		style: style,
	}
}

// Summarize sends the serialized transcript to the completion service and
// returns the summary text. An empty completion is a failure: callers decide
// whether to fall back.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.systemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Summarize the following meeting transcript:\n" + transcript,
			},
		},
	})
	if err != nil {
		return "", errs.Wrap(errs.KindGeneration, err, "completion request failed")
	}

	if len(resp.Choices) == 0 {
		return "", errs.New(errs.KindGeneration, "completion returned no choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	summary = strings.TrimSpace(summaryPrefix.ReplaceAllString(summary, ""))

	if summary == "" {
		return "", errs.New(errs.KindGeneration, "completion returned empty summary")
	}

	return summary, nil
}

func (c *Client) systemPrompt() string {
	if c.style == config.SummaryStyleConversational {
		return conversationalPrompt
	}
	return structuredPrompt
}
