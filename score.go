package midimix

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

type (
	// NoteEvent is a single note-on or note-off in a track, with its absolute
	// time in ticks from the start of the file.
	NoteEvent struct {
		Tick     int64
		On       bool
		Note     uint8
		Velocity uint8
	}

	// Track is the note events of one control channel source, in file order.
	// Name is the track name from the file, or a default channel role.
	Track struct {
		Name   string
		Events []NoteEvent `yaml:",flow"`
	}

	// Span is one sounding note: it starts at the tick of a note-on with
	// velocity > 0 and ends at the tick of the first later event with the same
	// note number that is either a note-off or has velocity 0. A note that is
	// never released has End = math.MaxInt64 and sounds until the end of time.
	Span struct {
		Start    int64
		End      int64
		Note     uint8
		Velocity uint8
	}

	// Score is the parsed contents of a MIDI file, reduced to what the mixer
	// needs: up to MaxChannels tracks of note events, the tick resolution and
	// the tempo. Tempo is in microseconds per beat, as in the file.
	Score struct {
		TicksPerBeat int
		Tempo        int64
		Tracks       []Track
	}
)

// DefaultTempo is 500000 microseconds per beat, i.e. 120 BPM, used when the
// file has no set-tempo event.
const DefaultTempo = 500000

func (s *Score) BPM() float64 {
	if s.Tempo <= 0 {
		return 0
	}
	return 6e7 / float64(s.Tempo)
}

// TickAt converts a frame number at the given frame rate into a (fractional)
// tick position in the score.
func (s *Score) TickAt(frame, fps int) float64 {
	seconds := float64(frame) / float64(fps)
	return seconds * 1e6 / float64(s.Tempo) * float64(s.TicksPerBeat)
}

func (s *Score) Validate() error {
	if s.TicksPerBeat <= 0 {
		return errors.New("TicksPerBeat should be > 0")
	}
	if s.Tempo <= 0 {
		return errors.New("Tempo should be > 0")
	}
	if len(s.Tracks) > MaxChannels {
		return fmt.Errorf("a score can have at most %d tracks", MaxChannels)
	}
	for i, t := range s.Tracks {
		for j := 1; j < len(t.Events); j++ {
			if t.Events[j].Tick < t.Events[j-1].Tick {
				return fmt.Errorf("track %d event %d goes back in time", i, j)
			}
		}
	}
	return nil
}

// Copy makes a deep copy of a Score.
func (s *Score) Copy() Score {
	tracks := make([]Track, len(s.Tracks))
	for i, t := range s.Tracks {
		tracks[i] = t.Copy()
	}
	return Score{TicksPerBeat: s.TicksPerBeat, Tempo: s.Tempo, Tracks: tracks}
}

// Copy makes a deep copy of a Track.
func (t *Track) Copy() Track {
	events := make([]NoteEvent, len(t.Events))
	copy(events, t.Events)
	return Track{Name: t.Name, Events: events}
}

// NumNotes returns the number of sounding note-ons (velocity > 0) in the
// track; note-ons with velocity 0 are releases in disguise and do not count.
func (t Track) NumNotes() int {
	ret := 0
	for _, e := range t.Events {
		if e.On && e.Velocity > 0 {
			ret++
		}
	}
	return ret
}

// Spans pairs every sounding note-on with its release. Each note-on matches
// the first later release-like event (note-off, or note-on with velocity 0)
// of the same note number, so two overlapping note-ons of the same note both
// end at the same release.
func (t Track) Spans() []Span {
	type release struct {
		index int
		tick  int64
	}
	releases := make(map[uint8][]release)
	for i, e := range t.Events {
		if !e.On || e.Velocity == 0 {
			releases[e.Note] = append(releases[e.Note], release{index: i, tick: e.Tick})
		}
	}
	var spans []Span
	for i, e := range t.Events {
		if !e.On || e.Velocity == 0 {
			continue
		}
		end := int64(math.MaxInt64)
		rs := releases[e.Note]
		j := sort.Search(len(rs), func(k int) bool { return rs[k].index > i })
		if j < len(rs) {
			end = rs[j].tick
		}
		spans = append(spans, Span{Start: e.Tick, End: end, Note: e.Note, Velocity: e.Velocity})
	}
	return spans
}
