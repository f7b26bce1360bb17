// ABOUTME: Sine tone generator for simulated reply audio
// ABOUTME: Produces mono PCM16 little-endian segments
package sim

import (
	"encoding/binary"
	"math"
	"time"
)

// Tone renders a sine wave at the given frequency as mono PCM16 bytes.
func Tone(freq float64, d time.Duration, sampleRate int) []byte {
	samples := int(float64(sampleRate) * d.Seconds())
	out := make([]byte, samples*2)

	for i := 0; i < samples; i++ {
		t := float64(i) / float64(sampleRate)
		sample := math.Sin(2 * math.Pi * freq * t)

		// Half volume keeps the simulator easy on the ears.
		pcm := int16(sample * 32767.0 * 0.5)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(pcm))
	}

	return out
}
