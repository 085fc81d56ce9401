// Package midifile reads Standard MIDI Files into midimix scores.
package midifile

import (
	"fmt"
	"io"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/tzootz/midimix"
)

// Load reads the MIDI file at path into a score.
func Load(path string) (*midimix.Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open MIDI file: %w", err)
	}
	defer f.Close()
	score, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse MIDI file %v: %w", path, err)
	}
	return score, nil
}

// Read parses Standard MIDI File contents into a score: the tick resolution
// from the header, the tempo from the first set-tempo event of track 0
// (DefaultTempo when there is none) and the note events of the first
// MaxChannels tracks. SMPTE time division is not supported.
func Read(r io.Reader) (*midimix.Score, error) {
	data, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("smf.ReadFrom failed: %w", err)
	}
	ticks, ok := data.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("only metric time division is supported, file uses %v", data.TimeFormat)
	}
	score := &midimix.Score{
		TicksPerBeat: int(ticks.Resolution()),
		Tempo:        midimix.DefaultTempo,
	}
	if len(data.Tracks) == 0 {
		return nil, fmt.Errorf("file contains no tracks")
	}
	for _, ev := range data.Tracks[0] {
		var bpm float64
		if ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
			score.Tempo = int64(math.Round(6e7 / bpm))
			break
		}
	}
	numTracks := len(data.Tracks)
	if numTracks > midimix.MaxChannels {
		numTracks = midimix.MaxChannels
	}
	for i, tr := range data.Tracks[:numTracks] {
		track := midimix.Track{Name: midimix.ChannelRoles[i]}
		var abs int64
		for _, ev := range tr {
			abs += int64(ev.Delta)
			var name string
			if ev.Message.GetMetaTrackName(&name) && name != "" {
				track.Name = name
				continue
			}
			var channel, key, velocity uint8
			if ev.Message.GetNoteOn(&channel, &key, &velocity) {
				track.Events = append(track.Events, midimix.NoteEvent{Tick: abs, On: true, Note: key, Velocity: velocity})
			} else if ev.Message.GetNoteOff(&channel, &key, &velocity) {
				track.Events = append(track.Events, midimix.NoteEvent{Tick: abs, On: false, Note: key, Velocity: velocity})
			}
		}
		score.Tracks = append(score.Tracks, track)
	}
	if err := score.Validate(); err != nil {
		return nil, fmt.Errorf("file produced an invalid score: %w", err)
	}
	return score, nil
}
