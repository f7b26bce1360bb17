// ABOUTME: Shared audio format constants and types
// ABOUTME: Defines capture and wire formats for the voice session
package audio

// Wire format: the backend speaks raw mono PCM16 at 24 kHz in both
// directions. Capture runs at the device's native mono rate and is
// resampled up before encoding.
const (
	WireSampleRate    = 24000
	CaptureSampleRate = 16000
	Channels          = 1
	BytesPerSample    = 2
)

// Format describes a PCM stream.
type Format struct {
	SampleRate int
	Channels   int
}

// WireFormat returns the format used on the duplex channel.
func WireFormat() Format {
	return Format{SampleRate: WireSampleRate, Channels: Channels}
}
