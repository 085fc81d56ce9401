package mixer

import (
	"context"
	"fmt"
	"runtime"

	"github.com/viterin/vek/vek32"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tzootz/midimix"
)

// renderChunk is the number of frames one worker computes at a time. Small
// enough to balance uneven chunks, large enough to amortize the goroutine.
const renderChunk = 256

// Render samples all channels for frames [start, end] into a curve, spreading
// the work over the CPUs. The result is identical to calling StrengthsAt for
// every frame in order. Channel weights are not applied; see ApplyWeights.
func (m *Mixer) Render(ctx context.Context, start, end int) (*midimix.Curve, error) {
	if m.score == nil {
		return nil, fmt.Errorf("no MIDI file loaded")
	}
	start = midimix.ClampFrame(start)
	end = midimix.ClampFrame(end)
	if end < start {
		return nil, fmt.Errorf("end frame %d is before start frame %d", end, start)
	}
	frames := end - start + 1
	curve := midimix.NewCurve(m.cfg.FPS, start, frames, m.ChannelNames())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for chunk := 0; chunk < frames; chunk += renderChunk {
		first, last := chunk, chunk+renderChunk
		if last > frames {
			last = frames
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for row := first; row < last; row++ {
				s := m.StrengthsAt(start + row)
				for ch := range curve.Values {
					curve.Values[ch][row] = float32(s[ch])
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	m.log.Debug("rendered curve", zap.Int("start", start), zap.Int("end", end))
	return curve, nil
}

// ApplyWeights scales each channel of the curve by its configured weight,
// turning mix strengths into the values a downstream adapter consumes.
func (m *Mixer) ApplyWeights(curve *midimix.Curve) {
	for i, ch := range m.cfg.Channels {
		if i >= len(curve.Values) {
			break
		}
		vek32.MulNumber_Inplace(curve.Values[i], float32(*ch.Weight))
	}
}
