package midimix

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TriggerMode selects the transfer function mapping note activity of a track
// to a control strength in [0, 1].
type TriggerMode int

const (
	// Velocity outputs the mean velocity of the active notes.
	Velocity TriggerMode = iota
	// Pulse outputs the velocity of the most recent note, decaying linearly
	// over beats.
	Pulse
	// Hold outputs 1 while any note is active.
	Hold
	// Toggle outputs 1 while the cumulative note-on count is odd.
	Toggle
)

func (m TriggerMode) String() string {
	switch m {
	case Velocity:
		return "velocity"
	case Pulse:
		return "pulse"
	case Hold:
		return "hold"
	case Toggle:
		return "toggle"
	}
	return fmt.Sprintf("TriggerMode(%d)", int(m))
}

func ParseTriggerMode(s string) (TriggerMode, error) {
	switch strings.ToLower(s) {
	case "velocity":
		return Velocity, nil
	case "pulse":
		return Pulse, nil
	case "hold":
		return Hold, nil
	case "toggle":
		return Toggle, nil
	}
	return 0, fmt.Errorf("unknown trigger mode %q (want velocity, pulse, hold or toggle)", s)
}

func (m TriggerMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

func (m *TriggerMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	mode, err := ParseTriggerMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m TriggerMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *TriggerMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	mode, err := ParseTriggerMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Strength samples the spans of one track at tick t and maps the note
// activity through the given trigger mode. All modes output 0 when no note is
// active at t, Toggle included. decayRate is in strength units per beat and
// only Pulse uses it.
func Strength(spans []Span, mode TriggerMode, t float64, ticksPerBeat int, decayRate float64) float64 {
	active := make([]Span, 0, 8)
	for _, s := range spans {
		if float64(s.Start) <= t && t < float64(s.End) {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return 0
	}
	switch mode {
	case Velocity:
		sum := 0.0
		for _, s := range active {
			sum += float64(s.Velocity) / 127
		}
		return sum / float64(len(active))
	case Pulse:
		// most recent onset wins; on a tie, the earliest in file order
		latest := active[0]
		for _, s := range active[1:] {
			if s.Start > latest.Start {
				latest = s
			}
		}
		elapsed := (t - float64(latest.Start)) / float64(ticksPerBeat)
		decay := 1 - elapsed*decayRate
		if decay < 0 {
			decay = 0
		}
		return float64(latest.Velocity) / 127 * decay
	case Hold:
		return 1
	case Toggle:
		count := 0
		for _, s := range spans {
			if float64(s.Start) <= t {
				count++
			}
		}
		if count%2 == 1 {
			return 1
		}
		return 0
	}
	return 0
}

// StrengthAt is a convenience wrapper over Strength that computes the spans
// on every call; batch users should cache Track.Spans themselves.
func (t Track) StrengthAt(tick float64, mode TriggerMode, ticksPerBeat int, decayRate float64) float64 {
	return Strength(t.Spans(), mode, tick, ticksPerBeat, decayRate)
}
