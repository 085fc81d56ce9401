package midimix

import (
	"fmt"
	"math"
	"strings"
)

// Curve is a block of rendered control strengths: one float32 series per
// channel, sampled once per frame starting at frame Start.
type Curve struct {
	FPS    int         `json:"fps"`
	Start  int         `json:"start"`
	Names  []string    `json:"names" yaml:",flow"`
	Values [][]float32 `json:"values"`
}

// NewCurve allocates a curve with the given channel names and frame count.
func NewCurve(fps, start, frames int, names []string) *Curve {
	values := make([][]float32, len(names))
	for i := range values {
		values[i] = make([]float32, frames)
	}
	namesCopy := make([]string, len(names))
	copy(namesCopy, names)
	return &Curve{FPS: fps, Start: start, Names: namesCopy, Values: values}
}

// Frames returns the number of frames in the curve.
func (c *Curve) Frames() int {
	if len(c.Values) == 0 {
		return 0
	}
	return len(c.Values[0])
}

// At returns the strengths of all channels at the given row.
func (c *Curve) At(row int) []float32 {
	ret := make([]float32, len(c.Values))
	for i, vals := range c.Values {
		if row >= 0 && row < len(vals) {
			ret[i] = vals[row]
		}
	}
	return ret
}

// MixValues formats the strengths at the given row the way the meters show
// them, e.g. "[0.00, 1.00, 0.50, 0.25]".
func (c *Curve) MixValues(row int) string {
	parts := make([]string, len(c.Values))
	for i, v := range c.At(row) {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// auditionGain keeps the mix of channel tones out of clipping range
const auditionGain = 0.2

// Audition synthesizes the curve as audible sine tones, one harmonically
// related tone per channel with the channel strength as its amplitude, held
// for the duration of each frame. The result is mono 44100 Hz, meant for
// checking audio/visual sync by ear, not for listening pleasure.
func (c *Curve) Audition() []float32 {
	const sampleRate = 44100
	if c.FPS <= 0 || c.Frames() == 0 {
		return nil
	}
	samplesPerFrame := sampleRate / c.FPS
	buffer := make([]float32, c.Frames()*samplesPerFrame)
	for ch, vals := range c.Values {
		freq := 220 * float64(ch+1)
		phaseInc := 2 * math.Pi * freq / sampleRate
		phase := 0.0
		for row, v := range vals {
			amp := float64(v) * auditionGain
			base := row * samplesPerFrame
			for i := 0; i < samplesPerFrame; i++ {
				buffer[base+i] += float32(amp * math.Sin(phase))
				phase += phaseInc
			}
		}
	}
	return buffer
}
