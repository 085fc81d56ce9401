package midimix

// MaxChannels is the number of control channels a mixer drives. The first
// MaxChannels tracks of a file are used, one per channel.
const MaxChannels = 4

// ChannelRoles are the default channel names, reflecting the conventional
// track layout of a four track control file.
var ChannelRoles = [MaxChannels]string{
	"Kick/Structure",
	"Snare/Accent",
	"Bass/Movement",
	"Lead/Style",
}

const (
	MinFPS   = 1
	MaxFPS   = 120
	MaxFrame = 9999

	MinMixStrength = 0.0
	MaxMixStrength = 2.0
	MinDecayRate   = 0.1
	MaxDecayRate   = 10.0
	MinWeight      = 0.0
	MaxWeight      = 2.0

	DefaultFPS         = 30
	DefaultMixStrength = 1.0
	DefaultDecayRate   = 2.0
	DefaultWeight      = 1.0
)

// Params are the sampling parameters shared by all channels of a mixer.
type Params struct {
	FPS         int
	MixStrength float64
	DecayRate   float64
}

func DefaultParams() Params {
	return Params{FPS: DefaultFPS, MixStrength: DefaultMixStrength, DecayRate: DefaultDecayRate}
}

// Clamp forces every parameter into its allowed range.
func (p Params) Clamp() Params {
	p.FPS = clampInt(p.FPS, MinFPS, MaxFPS)
	p.MixStrength = clampFloat(p.MixStrength, MinMixStrength, MaxMixStrength)
	p.DecayRate = clampFloat(p.DecayRate, MinDecayRate, MaxDecayRate)
	return p
}

// ClampFrame forces a frame number into [0, MaxFrame].
func ClampFrame(frame int) int {
	return clampInt(frame, 0, MaxFrame)
}

// ClampWeight forces a channel weight into [MinWeight, MaxWeight].
func ClampWeight(weight float64) float64 {
	return clampFloat(weight, MinWeight, MaxWeight)
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
