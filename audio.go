package midimix

// AudioSink is the playback end for audition buffers.
type AudioSink interface {
	WriteAudio(buffer []float32) error
	Close() error
}

// AudioContext is a system audio output that can hand out sinks.
type AudioContext interface {
	Output() AudioSink
	Close() error
}
