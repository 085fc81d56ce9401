//go:build !cgo

package cmd

import (
	"github.com/tzootz/midimix/mixer"
)

func NewMIDIContext(fps int) mixer.MIDIContext {
	// with no cgo, we cannot use MIDI, so return a null context
	return mixer.NullMIDIContext{}
}
