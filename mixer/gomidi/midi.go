//go:build cgo

// Package gomidi is the rtmidi-backed live input for the mixer monitor.
package gomidi

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/tzootz/midimix/mixer"
)

type (
	// RTMIDIContext converts timestamped messages from an rtmidi input into
	// monitor-frame LiveEvents. Incoming messages are stamped against a
	// frame clock derived from the monitor FPS; the clock is nudged towards
	// the event timestamps so long sessions do not drift.
	RTMIDIContext struct {
		driver        *rtmididrv.Driver
		currentIn     drivers.In
		fps           int
		events        chan timestampedMsg
		eventsBuf     []timestampedMsg
		eventIndex    int
		startFrame    int
		startFrameSet bool
	}

	timestampedMsg struct {
		frame int
		msg   midi.Message
	}
)

// NewContext opens the rtmidi driver. fps sets the resolution of the event
// clock; it should match the monitor frame rate.
func NewContext(fps int) *RTMIDIContext {
	m := RTMIDIContext{fps: fps, events: make(chan timestampedMsg, 1024)}
	// there's not much we can do if this fails, so just use m.driver = nil to
	// indicate no driver available
	m.driver, _ = rtmididrv.New()
	return &m
}

// Devices lists the names of the available MIDI inputs.
func (c *RTMIDIContext) Devices() []string {
	if c.driver == nil {
		return nil
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return nil
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names
}

// Open opens the first input whose name starts with prefix, or just the
// first input when takeFirst is set, closing the currently open input if
// necessary.
func (c *RTMIDIContext) Open(prefix string, takeFirst bool) error {
	if c.driver == nil {
		return errors.New("no driver available")
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	for _, in := range ins {
		if takeFirst || (prefix != "" && strings.HasPrefix(in.String(), prefix)) {
			return c.open(in)
		}
	}
	if takeFirst {
		return errors.New("could not find any MIDI input")
	}
	return fmt.Errorf("could not find any MIDI input starting with %q", prefix)
}

func (c *RTMIDIContext) open(in drivers.In) error {
	if c.currentIn == in {
		return nil
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.currentIn = in
	if err := in.Open(); err != nil {
		c.currentIn = nil
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	if _, err := midi.ListenTo(in, c.handleMessage); err != nil {
		in.Close()
		c.currentIn = nil
		return fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	return nil
}

func (c *RTMIDIContext) Close() {
	if c.driver == nil {
		return
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.driver.Close()
}

func (c *RTMIDIContext) handleMessage(msg midi.Message, timestampms int32) {
	m := timestampedMsg{frame: int(int64(timestampms) * int64(c.fps) / 1000), msg: msg}
	select {
	case c.events <- m: // if the channel is full, just drop the message
	default:
	}
}

// NextEvent returns the next queued note event converted to a LiveEvent, with
// its frame relative to the current block. Other message types are skipped.
func (c *RTMIDIContext) NextEvent(frame int) (event mixer.LiveEvent, ok bool) {
F:
	for {
		select {
		case msg := <-c.events:
			c.eventsBuf = append(c.eventsBuf, msg)
			if !c.startFrameSet {
				c.startFrame = msg.frame
				c.startFrameSet = true
			}
		default:
			break F
		}
	}
	if c.eventIndex > 0 { // an event was consumed; check how badly the clock is off
		delta := frame + c.startFrame - c.eventsBuf[c.eventIndex-1].frame
		// delta should never be negative, because an event is not consumed
		// until the current frame is past the frame of the event. If it has
		// been a while since the last event, delta may be *positive* i.e. the
		// event was consumed too late, so adjust the clock in that case.
		c.startFrame -= delta / 5 // adjust the start frame towards the consumed event
	}
	for c.eventIndex < len(c.eventsBuf) {
		var channel, key, velocity uint8
		m := c.eventsBuf[c.eventIndex]
		f := m.frame - c.startFrame
		c.eventIndex++
		isNoteOn := m.msg.GetNoteOn(&channel, &key, &velocity)
		isNoteOff := !isNoteOn && m.msg.GetNoteOff(&channel, &key, &velocity)
		if isNoteOn || isNoteOff {
			return mixer.LiveEvent{
				Frame:    f,
				On:       isNoteOn,
				Channel:  int(channel),
				Note:     key,
				Velocity: velocity,
			}, true
		}
	}
	c.eventIndex = len(c.eventsBuf) + 1
	return mixer.LiveEvent{}, false
}

// FinishBlock advances the frame clock by the given number of frames and
// compacts the event buffer.
func (c *RTMIDIContext) FinishBlock(frame int) {
	c.startFrame += frame
	if c.eventIndex > 0 {
		copy(c.eventsBuf, c.eventsBuf[c.eventIndex-1:])
		c.eventsBuf = c.eventsBuf[:len(c.eventsBuf)-c.eventIndex+1]
		if len(c.eventsBuf) > 0 {
			// events were not consumed this round; adjust the clock towards
			// the future events so they render close to when they arrived.
			// delta is always negative here.
			delta := c.startFrame - c.eventsBuf[0].frame
			c.startFrame -= delta / 5
		}
	}
	c.eventIndex = 0
}
