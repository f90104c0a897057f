package transcript

import (
	"context"
	"errors"
	"testing"
)

type fakeDirectory struct {
	names map[string]string
	err   error
	seen  []string
}

func (f *fakeDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	f.seen = ids
	if f.err != nil {
		return nil, f.err
	}
	return f.names, nil
}

func TestEnrichResolvesKnownSpeakers(t *testing.T) {
	records := []Record{
		{SpeakerID: "u1", Text: "Hello", StartTs: 0, StopTs: 100},
		{SpeakerID: "a1", Text: "Hi there", StartTs: 150, StopTs: 300},
		{SpeakerID: "u1", Text: "Shall we begin?", StartTs: 400, StopTs: 600},
	}
	dir := &fakeDirectory{names: map[string]string{"u1": "Alice", "a1": "Note Taker"}}

	enriched, err := Enrich(context.Background(), dir, records)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	if len(enriched) != 3 {
		t.Fatalf("expected 3 records, got %d", len(enriched))
	}
	if enriched[0].SpeakerName != "Alice" {
		t.Errorf("expected Alice, got %s", enriched[0].SpeakerName)
	}
	if enriched[1].SpeakerName != "Note Taker" {
		t.Errorf("expected Note Taker, got %s", enriched[1].SpeakerName)
	}
	if enriched[2].Text != "Shall we begin?" {
		t.Error("expected record order preserved")
	}

	// Distinct ids only, one lookup call
	if len(dir.seen) != 2 {
		t.Errorf("expected 2 distinct speaker ids, got %v", dir.seen)
	}
}

func TestEnrichUnknownSpeakerFallsBack(t *testing.T) {
	records := []Record{
		{SpeakerID: "u1", Text: "Hello"},
		{SpeakerID: "ghost", Text: "Who am I?"},
	}
	dir := &fakeDirectory{names: map[string]string{"u1": "Alice"}}

	enriched, err := Enrich(context.Background(), dir, records)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	if enriched[0].SpeakerName != "Alice" {
		t.Errorf("expected Alice, got %s", enriched[0].SpeakerName)
	}
	if enriched[1].SpeakerName != UnknownSpeaker {
		t.Errorf("expected %q, got %q", UnknownSpeaker, enriched[1].SpeakerName)
	}
}

func TestEnrichEmptyNameFallsBack(t *testing.T) {
	records := []Record{{SpeakerID: "u1", Text: "Hello"}}
	dir := &fakeDirectory{names: map[string]string{"u1": ""}}

	enriched, err := Enrich(context.Background(), dir, records)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if enriched[0].SpeakerName != UnknownSpeaker {
		t.Errorf("expected %q for empty name, got %q", UnknownSpeaker, enriched[0].SpeakerName)
	}
}

func TestEnrichPropagatesDirectoryFailure(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("db down")}
	_, err := Enrich(context.Background(), dir, []Record{{SpeakerID: "u1"}})
	if err == nil {
		t.Fatal("expected error when directory lookup fails")
	}
}
