// Package transcript parses the video platform's line-delimited JSON
// transcript format and enriches records with speaker display names.
package transcript

import (
	"encoding/json"
	"strings"

	"github.com/huddleai/huddle/internal/errs"
)

// previewLen bounds how much transcript content error messages carry.
const previewLen = 100

// Record is one utterance from a raw transcript file.
type Record struct {
	SpeakerID string `json:"speaker_id"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	StartTs   int64  `json:"start_ts"`
	StopTs    int64  `json:"stop_ts"`
}

// EnrichedRecord is a Record with its speaker identity resolved.
type EnrichedRecord struct {
	Record
	SpeakerName string `json:"speaker_name"`
}

// ParseJSONL decodes line-delimited JSON transcript content. Blank lines are
// skipped; the first malformed line fails the whole parse, matching the
// upstream transcript contract where a bad line means a corrupt file.
func ParseJSONL(content string) ([]Record, error) {
	lines := strings.Split(content, "\n")
	records := make([]Record, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, errs.Wrap(errs.KindTransform, err,
				"failed to parse transcript line: "+Preview(line))
		}
		records = append(records, rec)
	}

	return records, nil
}

// StringifyJSONL serializes enriched records back to line-delimited JSON in
// the order given (chronological order is preserved from the source file).
func StringifyJSONL(records []EnrichedRecord) (string, error) {
	var b strings.Builder
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return "", errs.Wrap(errs.KindTransform, err, "failed to serialize transcript record")
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.Write(data)
	}
	return b.String(), nil
}

// Preview returns a short prefix of content suitable for error messages.
func Preview(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= previewLen {
		return content
	}
	return content[:previewLen] + "..."
}
