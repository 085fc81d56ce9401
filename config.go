package midimix

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	// ChannelConfig maps one source track of the file to a control channel.
	ChannelConfig struct {
		// Track is the zero based index of the source track in the file.
		Track int
		// Name labels the channel in meters and exports; empty means the
		// default role name for the channel slot.
		Name string `yaml:",omitempty"`
		// Mode is the trigger mode of this channel.
		Mode TriggerMode
		// Weight scales the channel strength for downstream consumers. nil
		// (absent in the file) means DefaultWeight; an explicit 0 is valid
		// and mutes the weighted output of the channel.
		Weight *float64 `yaml:",omitempty"`
	}

	// Config is a mixer setup: the sampling parameters and up to MaxChannels
	// channel mappings. It is read from a .yml or .json file; missing values
	// fall back to defaults so a sparse file works. MixStrength is a pointer
	// because 0 is a valid value (a muted mix), unlike FPS and DecayRate
	// whose ranges exclude 0.
	Config struct {
		FPS         int      `yaml:",omitempty"`
		MixStrength *float64 `yaml:"mixstrength,omitempty"`
		DecayRate   float64  `yaml:"decayrate,omitempty"`
		Channels    []ChannelConfig
	}
)

// DefaultConfig maps tracks 1:1 to all four channels in Velocity mode, which
// is what a file with the conventional kick/snare/bass/lead layout wants.
func DefaultConfig() Config {
	c := Config{}
	for i := 0; i < MaxChannels; i++ {
		c.Channels = append(c.Channels, ChannelConfig{Track: i})
	}
	return c.WithDefaults()
}

// WithDefaults fills missing values with defaults and clamps everything into
// range. The result always has at least one and at most MaxChannels channels.
func (c Config) WithDefaults() Config {
	if c.FPS == 0 {
		c.FPS = DefaultFPS
	}
	if c.DecayRate == 0 {
		c.DecayRate = DefaultDecayRate
	}
	if len(c.Channels) == 0 {
		for i := 0; i < MaxChannels; i++ {
			c.Channels = append(c.Channels, ChannelConfig{Track: i})
		}
	}
	if len(c.Channels) > MaxChannels {
		c.Channels = c.Channels[:MaxChannels]
	}
	channels := make([]ChannelConfig, len(c.Channels))
	copy(channels, c.Channels)
	c.Channels = channels
	for i := range c.Channels {
		if c.Channels[i].Name == "" {
			c.Channels[i].Name = ChannelRoles[i]
		}
		w := DefaultWeight
		if c.Channels[i].Weight != nil {
			w = ClampWeight(*c.Channels[i].Weight)
		}
		c.Channels[i].Weight = &w
	}
	p := c.Params().Clamp()
	c.FPS, c.DecayRate = p.FPS, p.DecayRate
	mix := p.MixStrength
	c.MixStrength = &mix
	return c
}

func (c Config) Params() Params {
	p := Params{FPS: c.FPS, MixStrength: DefaultMixStrength, DecayRate: c.DecayRate}
	if c.MixStrength != nil {
		p.MixStrength = *c.MixStrength
	}
	return p
}

func (c Config) Validate() error {
	if len(c.Channels) > MaxChannels {
		return fmt.Errorf("a mixer can have at most %d channels", MaxChannels)
	}
	for i, ch := range c.Channels {
		if ch.Track < 0 {
			return fmt.Errorf("channel %d uses a negative track index", i+1)
		}
	}
	return nil
}

// ParseConfig reads a Config from .json or .yml contents.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if errJSON := json.Unmarshal(data, &c); errJSON != nil {
		if errYaml := yaml.Unmarshal(data, &c); errYaml != nil {
			return Config{}, fmt.Errorf("config could not be unmarshaled as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	// validate before defaulting: a file with too many channels is an error,
	// only programmatically built configs get silently truncated
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c.WithDefaults(), nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config %v: %v", path, err)
	}
	return ParseConfig(data)
}
