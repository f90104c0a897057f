package transcript

import (
	"context"
	"fmt"
)

// UnknownSpeaker is the display name attached to any record whose speaker id
// matches neither a user nor an agent.
const UnknownSpeaker = "Unknown"

// Directory resolves speaker ids to display names. The production
// implementation unions the user and agent identity stores.
type Directory interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Enrich attaches a display name to every record. Unresolved speaker ids all
// map to UnknownSpeaker. Record order is preserved.
func Enrich(ctx context.Context, dir Directory, records []Record) ([]EnrichedRecord, error) {
	ids := distinctSpeakerIDs(records)

	names, err := dir.DisplayNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve speakers: %w", err)
	}

	enriched := make([]EnrichedRecord, len(records))
	for i, rec := range records {
		name, ok := names[rec.SpeakerID]
		if !ok || name == "" {
			name = UnknownSpeaker
		}
		enriched[i] = EnrichedRecord{Record: rec, SpeakerName: name}
	}

	return enriched, nil
}

func distinctSpeakerIDs(records []Record) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.SpeakerID]; ok {
			continue
		}
		seen[rec.SpeakerID] = struct{}{}
		ids = append(ids, rec.SpeakerID)
	}
	return ids
}
