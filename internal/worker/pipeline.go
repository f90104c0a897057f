package worker

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/huddleai/huddle/internal/errs"
	"github.com/huddleai/huddle/internal/events"
	"github.com/huddleai/huddle/internal/meetings"
	"github.com/huddleai/huddle/internal/models"
	"github.com/huddleai/huddle/internal/summarizer"
	"github.com/huddleai/huddle/internal/transcript"
)

// maxTranscriptSize bounds how much transcript content one run will buffer.
const maxTranscriptSize = 32 << 20

// Summarizer is the generative text collaborator: enriched transcript in,
// summary text out.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Pipeline runs the transcript processing steps for one meeting:
// fetch -> parse -> enrich -> summarize -> persist. Steps are sequential;
// fetch, parse, and enrich are pure or read-only, and the final persist is
// the only externally visible write, so a crashed run can simply be re-run
// from the start.
type Pipeline struct {
	logger     *slog.Logger
	meetings   *meetings.Store
	directory  transcript.Directory
	summarizer Summarizer
	httpClient *http.Client
	events     *events.Publisher
}

// NewPipeline wires a pipeline from its collaborators.
func NewPipeline(logger *slog.Logger, store *meetings.Store, dir transcript.Directory, summarizer Summarizer, publisher *events.Publisher) *Pipeline {
	return &Pipeline{
		logger:     logger,
		meetings:   store,
		directory:  dir,
		summarizer: summarizer,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		events:     publisher,
	}
}

// Run executes one full pipeline run. Upstream and transform failures abort
// the run and leave the meeting untouched for a retry; only a summarization
// failure is recovered locally, with the fallback summary, so the meeting
// still completes.
func (p *Pipeline) Run(ctx context.Context, meetingID, transcriptURL string) error {
	log := p.logger.With("meeting_id", meetingID)
	log.Info("Processing meeting transcript", "transcript_url", transcriptURL)

	content, err := p.fetch(ctx, transcriptURL)
	if err != nil {
		return err
	}

	records, err := transcript.ParseJSONL(content)
	if err != nil {
		return err
	}
	log.Info("Parsed transcript", "records", len(records))

	enriched, err := transcript.Enrich(ctx, p.directory, records)
	if err != nil {
		return err
	}

	serialized, err := transcript.StringifyJSONL(enriched)
	if err != nil {
		return err
	}

	summary, err := p.summarizer.Summarize(ctx, serialized)
	if err != nil {
		// Summarization failure never aborts the run. Persist the fallback so
		// the meeting reaches completed and the UI can say so.
		log.Error("Summary generation failed, using fallback", "error", err.Error())
		summary = summarizer.FallbackSummary
	}

	if err := p.meetings.SaveSummary(ctx, meetingID, summary); err != nil {
		return err
	}

	if _, err := p.events.PublishLifecycleEvent(ctx, events.LifecycleEvent{
		MeetingID: meetingID,
		Event:     events.EventSummaryReady,
		Status:    models.MeetingStatusCompleted,
	}); err != nil {
		log.Warn("Failed to publish lifecycle event", "error", err.Error())
	}

	log.Info("Meeting transcript processed")
	return nil
}

// fetch downloads the transcript and classifies obviously wrong responses.
// Storage providers answer presigned-URL problems with XML error documents,
// so a body that opens like markup is an upstream failure, not transcript
// content.
func (p *Pipeline) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errs.Wrap(errs.KindUpstream, err, "failed to create transcript request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.KindUpstream, err, "failed to fetch transcript")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptSize))
	if err != nil {
		return "", errs.Wrap(errs.KindUpstream, err, "failed to read transcript body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.Newf(errs.KindUpstream, "transcript fetch returned status %d: %s",
			resp.StatusCode, transcript.Preview(string(body)))
	}

	content := string(body)
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<") {
		if strings.Contains(trimmed, "AccessDenied") {
			return "", errs.Newf(errs.KindUpstream, "access denied to transcript URL: %s", url)
		}
		return "", errs.Newf(errs.KindUpstream, "unexpected content type, wanted line-delimited JSON: %s",
			transcript.Preview(trimmed))
	}

	return content, nil
}
