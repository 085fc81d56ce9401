package mixer_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/tzootz/midimix"
	"github.com/tzootz/midimix/mixer"
)

func testScore() *midimix.Score {
	return &midimix.Score{TicksPerBeat: 480, Tempo: 500000, Tracks: []midimix.Track{
		{Name: "one", Events: []midimix.NoteEvent{
			{Tick: 0, On: true, Note: 60, Velocity: 127},
			{Tick: 960, On: false, Note: 60},
		}},
		{Name: "two", Events: []midimix.NoteEvent{
			{Tick: 0, On: true, Note: 40, Velocity: 64},
			{Tick: 240, On: false, Note: 40},
		}},
	}}
}

func f64(v float64) *float64 { return &v }

func testConfig() midimix.Config {
	return midimix.Config{FPS: 30, Channels: []midimix.ChannelConfig{
		{Track: 0, Mode: midimix.Velocity, Weight: f64(2)},
		{Track: 1, Mode: midimix.Hold},
	}}
}

func testMixer() *mixer.Mixer {
	m := mixer.New(testConfig(), nil)
	m.SetScore(testScore())
	return m
}

func TestStrengthsAt(t *testing.T) {
	m := testMixer()
	// frame 15 at 30 fps and 120 BPM is tick 480
	s := m.StrengthsAt(15)
	assert.InDelta(t, 1.0, s[0], 1e-9) // velocity 127 note still sounding
	assert.InDelta(t, 0.0, s[1], 1e-9) // the hold note ended at tick 240
	s = m.StrengthsAt(0)
	assert.InDelta(t, 1.0, s[0], 1e-9)
	assert.InDelta(t, 1.0, s[1], 1e-9)
}

func TestStrengthsAtNoScore(t *testing.T) {
	m := mixer.New(testConfig(), nil)
	assert.Equal(t, mixer.Strengths{}, m.StrengthsAt(0))
}

func TestStrengthsAtMissingTrack(t *testing.T) {
	cfg := testConfig()
	cfg.Channels[1].Track = 7
	m := mixer.New(cfg, nil)
	m.SetScore(testScore())
	s := m.StrengthsAt(0)
	assert.InDelta(t, 0.0, s[1], 1e-9)
}

func TestWeightedAt(t *testing.T) {
	m := testMixer()
	w := m.WeightedAt(0)
	assert.InDelta(t, 2.0, w[0], 1e-9) // weight 2
	assert.InDelta(t, 1.0, w[1], 1e-9) // default weight
}

func TestMixValues(t *testing.T) {
	m := testMixer()
	assert.Equal(t, "[1.00, 1.00]", m.MixValues(0))
	assert.Equal(t, "[1.00, 0.00]", m.MixValues(15))
}

func TestMixStrengthScaling(t *testing.T) {
	cfg := testConfig()
	cfg.MixStrength = f64(0.5)
	m := mixer.New(cfg, nil)
	m.SetScore(testScore())
	s := m.StrengthsAt(0)
	assert.InDelta(t, 0.5, s[0], 1e-9)
	assert.InDelta(t, 0.5, s[1], 1e-9)
}

func TestZeroMixStrengthMutes(t *testing.T) {
	cfg := testConfig()
	cfg.MixStrength = f64(0)
	m := mixer.New(cfg, nil)
	m.SetScore(testScore())
	assert.Equal(t, mixer.Strengths{}, m.StrengthsAt(0))
}

func TestZeroWeightMutesChannel(t *testing.T) {
	cfg := testConfig()
	cfg.Channels[0].Weight = f64(0)
	m := mixer.New(cfg, nil)
	m.SetScore(testScore())
	s := m.StrengthsAt(0)
	assert.InDelta(t, 1.0, s[0], 1e-9) // raw strengths are unaffected
	w := m.WeightedAt(0)
	assert.InDelta(t, 0.0, w[0], 1e-9)
	assert.InDelta(t, 1.0, w[1], 1e-9)
}

func TestTooManyChannelsTruncated(t *testing.T) {
	cfg := midimix.Config{FPS: 30}
	for i := 0; i < 6; i++ {
		cfg.Channels = append(cfg.Channels, midimix.ChannelConfig{Track: 0, Mode: midimix.Hold})
	}
	m := mixer.New(cfg, nil)
	m.SetScore(testScore())
	assert.Len(t, m.Config().Channels, midimix.MaxChannels)
	assert.Equal(t, "[1.00, 1.00, 1.00, 1.00]", m.MixValues(0))
	meter := m.Meter(0)
	assert.Contains(t, meter, "Track 4")
	assert.NotContains(t, meter, "Track 5")
	curve, err := m.Render(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.Len(t, curve.Names, midimix.MaxChannels)
}

func TestChannelNames(t *testing.T) {
	m := testMixer()
	// empty names fall back to the role names
	assert.Equal(t, []string{midimix.ChannelRoles[0], midimix.ChannelRoles[1]}, m.ChannelNames())
}

func TestBPM(t *testing.T) {
	m := mixer.New(testConfig(), nil)
	assert.Equal(t, 120.0, m.BPM())
	m.SetScore(&midimix.Score{TicksPerBeat: 480, Tempo: 600000})
	assert.Equal(t, 100.0, m.BPM())
}

func TestMeter(t *testing.T) {
	m := testMixer()
	meter := m.Meter(15)
	assert.Contains(t, meter, "Frame: 15 | FPS: 30 | BPM: 120.0")
	assert.Contains(t, meter, "Track 1 ["+midimix.ChannelRoles[0]+"]: ██████████ 100%")
	assert.Contains(t, meter, "Track 2 ["+midimix.ChannelRoles[1]+"]: ░░░░░░░░░░   0%")
}

func writeMidiFile(t *testing.T, path string, numTracks int) {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	for i := 0; i < numTracks; i++ {
		var tr smf.Track
		tr.Add(0, midi.NoteOn(uint8(i), 60, 100))
		tr.Add(480, midi.NoteOff(uint8(i), 60))
		tr.Close(0)
		s.Add(tr)
	}
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestLoadCachesByPathAndModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mid")
	writeMidiFile(t, path, 1)
	m := mixer.New(testConfig(), nil)
	require.NoError(t, m.Load(path))
	first := m.Score()
	require.NotNil(t, first)

	// unchanged file, same path: the cached parse is kept
	require.NoError(t, m.Load(path))
	assert.Same(t, first, m.Score())

	// touching the file invalidates the cache
	writeMidiFile(t, path, 2)
	require.NoError(t, os.Chtimes(path, time.Now(), time.Now().Add(time.Hour)))
	require.NoError(t, m.Load(path))
	assert.NotSame(t, first, m.Score())
	assert.Len(t, m.Score().Tracks, 2)
}

func TestLoadErrors(t *testing.T) {
	m := mixer.New(testConfig(), nil)
	assert.Error(t, m.Load(""))
	assert.Error(t, m.Load(filepath.Join(t.TempDir(), "missing.mid")))
}
