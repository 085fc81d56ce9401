package mixer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzootz/midimix"
	"github.com/tzootz/midimix/mixer"
)

func TestRenderMatchesStrengthsAt(t *testing.T) {
	m := testMixer()
	curve, err := m.Render(context.Background(), 0, 400)
	require.NoError(t, err)
	assert.Equal(t, 401, curve.Frames())
	assert.Equal(t, 30, curve.FPS)
	assert.Equal(t, m.ChannelNames(), curve.Names)
	for frame := 0; frame <= 400; frame++ {
		s := m.StrengthsAt(frame)
		for ch := range curve.Values {
			assert.InDelta(t, s[ch], curve.Values[ch][frame], 1e-6, "frame %d channel %d", frame, ch)
		}
	}
}

func TestRenderStartOffset(t *testing.T) {
	m := testMixer()
	curve, err := m.Render(context.Background(), 10, 20)
	require.NoError(t, err)
	assert.Equal(t, 10, curve.Start)
	assert.Equal(t, 11, curve.Frames())
	s := m.StrengthsAt(15)
	assert.InDelta(t, s[0], curve.Values[0][5], 1e-6)
}

func TestRenderErrors(t *testing.T) {
	m := mixer.New(testConfig(), nil)
	_, err := m.Render(context.Background(), 0, 10)
	assert.Error(t, err) // no score loaded

	m.SetScore(testScore())
	_, err = m.Render(context.Background(), 10, 5)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Render(ctx, 0, 10)
	assert.Error(t, err)
}

func TestApplyWeights(t *testing.T) {
	m := testMixer()
	curve, err := m.Render(context.Background(), 0, 10)
	require.NoError(t, err)
	unweighted := make([]float32, curve.Frames())
	copy(unweighted, curve.Values[0])
	m.ApplyWeights(curve)
	for row := range unweighted {
		assert.InDelta(t, unweighted[row]*2, curve.Values[0][row], 1e-6) // channel 1 weight is 2
	}
}

func TestApplyWeightsShortCurve(t *testing.T) {
	m := testMixer()
	curve := midimix.NewCurve(30, 0, 4, []string{"only"})
	m.ApplyWeights(curve) // more channels configured than the curve has
}
