//go:build cgo

// Package oto is the system audio output for audition playback.
package oto

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/tzootz/midimix"
)

const sampleRate = 44100

type (
	OtoContext struct {
		context *oto.Context
	}

	OtoOutput struct {
		context   *oto.Context
		player    *oto.Player
		reader    *io.PipeReader
		writer    *io.PipeWriter
		tmpBuffer []byte
	}
)

// NewContext opens the system audio output for mono 16-bit playback.
func NewContext() (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

func (c *OtoContext) Output() midimix.AudioSink {
	pr, pw := io.Pipe()
	return &OtoOutput{context: c.context, reader: pr, writer: pw}
}

func (c *OtoContext) Close() error {
	// the oto context cannot be closed; it lives until the process exits
	return nil
}

// WriteAudio queues a float32 buffer for playback, converting to 16-bit
// little-endian on the way. The player is started lazily on the first write.
func (o *OtoOutput) WriteAudio(floatBuffer []float32) error {
	o.tmpBuffer = floatBufferTo16BitLE(floatBuffer, o.tmpBuffer[:0])
	if o.player == nil {
		o.player = o.context.NewPlayer(o.reader)
		o.player.Play()
	}
	if _, err := o.writer.Write(o.tmpBuffer); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	return nil
}

// Close stops feeding the player, waits for the queued audio to drain and
// releases it.
func (o *OtoOutput) Close() error {
	o.writer.Close()
	if o.player != nil {
		for o.player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		if err := o.player.Close(); err != nil {
			return fmt.Errorf("cannot close oto player: %w", err)
		}
		o.player = nil
	}
	return nil
}

// floatBufferTo16BitLE converts a []float32 buffer to 16-bit little-endian
// bytes, appending to buf and clamping out of range samples.
func floatBufferTo16BitLE(floatBuffer []float32, buf []byte) []byte {
	for _, v := range floatBuffer {
		var uv int16
		if v < -1.0 {
			uv = -32767
		} else if v > 1.0 {
			uv = 32767
		} else {
			uv = int16(v * 32767)
		}
		buf = append(buf, byte(uv), byte(uint16(uv)>>8))
	}
	return buf
}
