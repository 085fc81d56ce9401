package mixer

import (
	"errors"

	"github.com/tzootz/midimix"
)

type (
	// LiveEvent is a MIDI note event from a live input. Frame is relative to
	// the start of the current block, in monitor frames.
	LiveEvent struct {
		Frame    int
		On       bool
		Channel  int
		Note     uint8
		Velocity uint8
	}

	// MIDIContext feeds live MIDI events to a monitor, block by block. A
	// block is one monitor frame: NextEvent returns the events due at or
	// before the given in-block frame, and FinishBlock tells the context how
	// many frames the block consumed so it can advance its clock.
	MIDIContext interface {
		NextEvent(frame int) (event LiveEvent, ok bool)
		FinishBlock(frame int)
		Open(prefix string, takeFirst bool) error
		Devices() []string
		Close()
	}

	// NullMIDIContext is used when MIDI support is not compiled in.
	NullMIDIContext struct{}

	// Monitor applies the trigger modes to live MIDI input instead of a
	// parsed file: MIDI channels map to the first MaxChannels control
	// channels, onsets are timed in monitor frames and Pulse decays against
	// a fixed BPM.
	Monitor struct {
		cfg   midimix.Config
		bpm   float64
		frame int

		channels [midimix.MaxChannels]liveChannel
	}

	liveChannel struct {
		notes       []liveNote
		toggleCount int
	}

	liveNote struct {
		note     uint8
		velocity uint8
		onFrame  int
	}
)

func (NullMIDIContext) NextEvent(frame int) (event LiveEvent, ok bool) { return LiveEvent{}, false }

func (NullMIDIContext) FinishBlock(frame int) {}
func (NullMIDIContext) Open(prefix string, takeFirst bool) error {
	return errors.New("no MIDI support in this build")
}

func (NullMIDIContext) Devices() []string { return nil }

func (NullMIDIContext) Close() {}

func NewMonitor(cfg midimix.Config, bpm float64) *Monitor {
	if bpm <= 0 {
		bpm = 120
	}
	return &Monitor{cfg: cfg.WithDefaults(), bpm: bpm}
}

func (mon *Monitor) Frame() int {
	return mon.frame
}

// Advance consumes the events of one frame from the context and moves the
// monitor clock forward.
func (mon *Monitor) Advance(context MIDIContext) {
	for {
		ev, ok := context.NextEvent(0)
		if !ok {
			break
		}
		mon.handle(ev)
	}
	context.FinishBlock(1)
	mon.frame++
}

func (mon *Monitor) handle(ev LiveEvent) {
	if ev.Channel < 0 || ev.Channel >= midimix.MaxChannels {
		return
	}
	ch := &mon.channels[ev.Channel]
	if ev.On && ev.Velocity > 0 {
		// ev.Frame is relative to the current block, so a late-delivered
		// event backdates the onset and Pulse decays from when it was played.
		// The block is one frame long; anything stamped later is due now.
		onFrame := mon.frame + ev.Frame
		if onFrame > mon.frame {
			onFrame = mon.frame
		}
		ch.notes = append(ch.notes, liveNote{note: ev.Note, velocity: ev.Velocity, onFrame: onFrame})
		ch.toggleCount++
		return
	}
	// note-off, or a note-on with velocity 0: release the oldest instance
	for i, n := range ch.notes {
		if n.note == ev.Note {
			ch.notes = append(ch.notes[:i], ch.notes[i+1:]...)
			return
		}
	}
}

// Strengths samples all channels at the current monitor frame, with the same
// transfer functions and MixStrength scaling as the file-based mixer.
func (mon *Monitor) Strengths() Strengths {
	var ret Strengths
	mix := *mon.cfg.MixStrength
	for i, ch := range mon.cfg.Channels {
		if i >= midimix.MaxChannels {
			break
		}
		ret[i] = mon.strength(i, ch.Mode) * mix
	}
	return ret
}

func (mon *Monitor) strength(slot int, mode midimix.TriggerMode) float64 {
	ch := &mon.channels[slot]
	if len(ch.notes) == 0 {
		return 0
	}
	switch mode {
	case midimix.Velocity:
		sum := 0.0
		for _, n := range ch.notes {
			sum += float64(n.velocity) / 127
		}
		return sum / float64(len(ch.notes))
	case midimix.Pulse:
		latest := ch.notes[0]
		for _, n := range ch.notes[1:] {
			if n.onFrame > latest.onFrame {
				latest = n
			}
		}
		beats := float64(mon.frame-latest.onFrame) / float64(mon.cfg.FPS) * mon.bpm / 60
		decay := 1 - beats*mon.cfg.DecayRate
		if decay < 0 {
			decay = 0
		}
		return float64(latest.velocity) / 127 * decay
	case midimix.Hold:
		return 1
	case midimix.Toggle:
		if ch.toggleCount%2 == 1 {
			return 1
		}
		return 0
	}
	return 0
}

// Meter renders the monitor state as a text meter.
func (mon *Monitor) Meter() string {
	s := mon.Strengths()
	names := make([]string, len(mon.cfg.Channels))
	for i, ch := range mon.cfg.Channels {
		names[i] = ch.Name
	}
	return Meter(mon.frame, mon.cfg.FPS, mon.bpm, names, s[:len(mon.cfg.Channels)])
}
