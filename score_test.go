package midimix_test

import (
	"math"
	"testing"

	"github.com/tzootz/midimix"
)

func testTrack() midimix.Track {
	return midimix.Track{Name: "test", Events: []midimix.NoteEvent{
		{Tick: 0, On: true, Note: 60, Velocity: 100},
		{Tick: 240, On: true, Note: 64, Velocity: 80},
		{Tick: 480, On: false, Note: 60},
		{Tick: 720, On: true, Note: 64, Velocity: 0}, // release in disguise
		{Tick: 960, On: true, Note: 60, Velocity: 50},
	}}
}

func TestSpans(t *testing.T) {
	spans := testTrack().Spans()
	expected := []midimix.Span{
		{Start: 0, End: 480, Note: 60, Velocity: 100},
		{Start: 240, End: 720, Note: 64, Velocity: 80},
		{Start: 960, End: math.MaxInt64, Note: 60, Velocity: 50},
	}
	if len(spans) != len(expected) {
		t.Fatalf("expected %d spans, got %d", len(expected), len(spans))
	}
	for i, s := range spans {
		if s != expected[i] {
			t.Errorf("span %d: expected %v, got %v", i, expected[i], s)
		}
	}
}

func TestSpansOverlappingSameNote(t *testing.T) {
	track := midimix.Track{Events: []midimix.NoteEvent{
		{Tick: 0, On: true, Note: 60, Velocity: 100},
		{Tick: 10, On: true, Note: 60, Velocity: 90},
		{Tick: 20, On: false, Note: 60},
	}}
	spans := track.Spans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	// both note-ons match the same release
	if spans[0].End != 20 || spans[1].End != 20 {
		t.Errorf("expected both spans to end at 20, got %d and %d", spans[0].End, spans[1].End)
	}
}

func TestNumNotes(t *testing.T) {
	if got := testTrack().NumNotes(); got != 3 {
		t.Errorf("expected 3 sounding note-ons, got %d", got)
	}
}

func TestTickAt(t *testing.T) {
	score := midimix.Score{TicksPerBeat: 480, Tempo: 500000}
	// one second at 120 BPM is two beats
	if got := score.TickAt(30, 30); got != 960 {
		t.Errorf("expected tick 960, got %v", got)
	}
	if got := score.TickAt(0, 30); got != 0 {
		t.Errorf("expected tick 0, got %v", got)
	}
}

func TestScoreBPM(t *testing.T) {
	score := midimix.Score{TicksPerBeat: 480, Tempo: 500000}
	if got := score.BPM(); got != 120 {
		t.Errorf("expected 120 BPM, got %v", got)
	}
	score.Tempo = 600000
	if got := score.BPM(); got != 100 {
		t.Errorf("expected 100 BPM, got %v", got)
	}
}

func TestScoreValidate(t *testing.T) {
	score := midimix.Score{TicksPerBeat: 480, Tempo: 500000, Tracks: []midimix.Track{testTrack()}}
	if err := score.Validate(); err != nil {
		t.Errorf("expected valid score, got %v", err)
	}
	bad := score.Copy()
	bad.TicksPerBeat = 0
	if err := bad.Validate(); err == nil {
		t.Errorf("expected error for zero TicksPerBeat")
	}
	bad = score.Copy()
	bad.Tracks[0].Events[0].Tick = 10000
	if err := bad.Validate(); err == nil {
		t.Errorf("expected error for events going back in time")
	}
	bad = score.Copy()
	for i := 0; i < midimix.MaxChannels; i++ {
		bad.Tracks = append(bad.Tracks, midimix.Track{})
	}
	if err := bad.Validate(); err == nil {
		t.Errorf("expected error for too many tracks")
	}
}

func TestScoreCopyIsDeep(t *testing.T) {
	score := midimix.Score{TicksPerBeat: 480, Tempo: 500000, Tracks: []midimix.Track{testTrack()}}
	copied := score.Copy()
	copied.Tracks[0].Events[0].Velocity = 1
	if score.Tracks[0].Events[0].Velocity != 100 {
		t.Errorf("copy shares event storage with the original")
	}
}
