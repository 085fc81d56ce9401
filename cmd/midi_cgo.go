//go:build cgo

package cmd

import (
	"github.com/tzootz/midimix/mixer"
	"github.com/tzootz/midimix/mixer/gomidi"
)

func NewMIDIContext(fps int) mixer.MIDIContext {
	return gomidi.NewContext(fps)
}
