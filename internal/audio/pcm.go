// ABOUTME: PCM16 codec for float32 sample buffers
// ABOUTME: Converts samples to little-endian bytes and transport-safe base64
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodePCM16 converts float samples in [-1, 1] to little-endian 16-bit PCM.
// Out-of-range samples are clamped. Asymmetric scaling matches the int16
// range: -32768 for the negative side, 32767 for the positive.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}

		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// DecodePCM16 converts little-endian 16-bit PCM bytes back to float samples.
// An odd byte count cannot be a whole number of samples and is rejected.
func DecodePCM16(data []byte) ([]float32, error) {
	if len(data)%BytesPerSample != 0 {
		return nil, fmt.Errorf("pcm16 data has odd length %d", len(data))
	}

	samples := make([]float32, len(data)/BytesPerSample)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples, nil
}

// ToTransportText encodes raw bytes for embedding in a JSON control frame.
func ToTransportText(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromTransportText reverses ToTransportText.
func FromTransportText(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid transport text: %w", err)
	}
	return data, nil
}
