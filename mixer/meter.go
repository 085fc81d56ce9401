package mixer

import (
	"fmt"
	"strings"
)

// meterBars quantizes a strength into 0..5 filled cells of a ten cell bar.
var meterBars = [6]string{
	"░░░░░░░░░░",
	"██░░░░░░░░",
	"████░░░░░░",
	"██████░░░░",
	"████████░░",
	"██████████",
}

// Meter renders a text meter of one frame: a header with the frame position,
// frame rate and tempo, and one bar per channel.
func Meter(frame, fps int, bpm float64, names []string, strengths []float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frame: %d | FPS: %d | BPM: %.1f\n", frame, fps, bpm)
	b.WriteString(strings.Repeat("─", 40) + "\n")
	for i, name := range names {
		s := 0.0
		if i < len(strengths) {
			s = strengths[i]
		}
		idx := int(s * 5)
		if idx > 5 {
			idx = 5
		}
		if idx < 0 {
			idx = 0
		}
		fmt.Fprintf(&b, "Track %d [%s]: %s %3.0f%%\n", i+1, name, meterBars[idx], s*100)
	}
	b.WriteString(strings.Repeat("─", 40) + "\n")
	return b.String()
}

// Meter renders the mixer state at the given frame as a text meter.
func (m *Mixer) Meter(frame int) string {
	s := m.StrengthsAt(frame)
	return Meter(frame, m.cfg.FPS, m.BPM(), m.ChannelNames(), s[:len(m.cfg.Channels)])
}
