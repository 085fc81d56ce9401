// Package mixer samples midimix scores into per-frame control strengths.
package mixer

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tzootz/midimix"
	"github.com/tzootz/midimix/midifile"
)

// Mixer holds a parsed score and a channel configuration and samples channel
// strengths frame by frame. It caches the parse per file path, so a host that
// calls Load once per rendered frame only pays for parsing when the path or
// the file itself changes.
type Mixer struct {
	cfg   midimix.Config
	score *midimix.Score
	spans [][]midimix.Span

	path    string
	modTime time.Time

	log *zap.Logger
}

// Strengths is one sampled frame, one value per channel slot. Slots beyond
// the configured channels stay 0.
type Strengths [midimix.MaxChannels]float64

func New(cfg midimix.Config, log *zap.Logger) *Mixer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mixer{cfg: cfg.WithDefaults(), log: log}
}

func (m *Mixer) Config() midimix.Config {
	return m.cfg
}

func (m *Mixer) Score() *midimix.Score {
	return m.score
}

// BPM returns the tempo of the loaded score, or 120 when nothing is loaded.
func (m *Mixer) BPM() float64 {
	if m.score == nil {
		return 120
	}
	return m.score.BPM()
}

// Load parses the MIDI file at path and caches the result. A second call
// with the same path is a no-op unless the file has been modified since.
func (m *Mixer) Load(path string) error {
	if path == "" {
		return fmt.Errorf("no MIDI file path given")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("could not stat MIDI file: %w", err)
	}
	if m.score != nil && path == m.path && info.ModTime().Equal(m.modTime) {
		return nil
	}
	score, err := midifile.Load(path)
	if err != nil {
		return err
	}
	m.SetScore(score)
	m.path = path
	m.modTime = info.ModTime()
	m.log.Info("loaded MIDI file",
		zap.String("path", path),
		zap.Float64("bpm", score.BPM()),
		zap.Int("ticksPerBeat", score.TicksPerBeat),
		zap.Int("tracks", len(score.Tracks)))
	for i, t := range score.Tracks {
		m.log.Info("track", zap.Int("index", i+1), zap.String("name", t.Name), zap.Int("notes", t.NumNotes()))
	}
	return nil
}

// SetScore replaces the score directly, bypassing the file cache.
func (m *Mixer) SetScore(score *midimix.Score) {
	m.score = score
	m.spans = make([][]midimix.Span, len(score.Tracks))
	for i, t := range score.Tracks {
		m.spans[i] = t.Spans()
	}
	m.path = ""
	m.modTime = time.Time{}
}

// StrengthsAt samples all channels at the given frame. The returned values
// are the trigger mode outputs scaled by MixStrength; channel weights are not
// applied here. A nil score gives all zeros.
func (m *Mixer) StrengthsAt(frame int) Strengths {
	var ret Strengths
	if m.score == nil {
		return ret
	}
	frame = midimix.ClampFrame(frame)
	tick := m.score.TickAt(frame, m.cfg.FPS)
	mix := *m.cfg.MixStrength
	for i, ch := range m.cfg.Channels {
		if i >= midimix.MaxChannels || ch.Track >= len(m.spans) {
			continue
		}
		s := midimix.Strength(m.spans[ch.Track], ch.Mode, tick, m.score.TicksPerBeat, m.cfg.DecayRate)
		ret[i] = s * mix
	}
	return ret
}

// WeightedAt is StrengthsAt with the channel weights applied; these are the
// values a downstream adapter consumes.
func (m *Mixer) WeightedAt(frame int) Strengths {
	ret := m.StrengthsAt(frame)
	for i, ch := range m.cfg.Channels {
		if i >= midimix.MaxChannels {
			break
		}
		ret[i] *= *ch.Weight
	}
	return ret
}

// MixValues formats the strengths at the given frame as e.g.
// "[0.00, 1.00, 0.50, 0.25]", one value per configured channel.
func (m *Mixer) MixValues(frame int) string {
	s := m.StrengthsAt(frame)
	parts := make([]string, len(m.cfg.Channels))
	for i := range m.cfg.Channels {
		parts[i] = fmt.Sprintf("%.2f", s[i])
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ChannelNames returns the configured channel names in slot order.
func (m *Mixer) ChannelNames() []string {
	names := make([]string, len(m.cfg.Channels))
	for i, ch := range m.cfg.Channels {
		names[i] = ch.Name
	}
	return names
}
