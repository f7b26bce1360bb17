// ABOUTME: Microphone capture pipeline using malgo/miniaudio
// ABOUTME: Owns the capture device and emits native-rate float frames
package capture

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/audio"
	"github.com/voicelink/voicelink-go/internal/metrics"
)

// Config holds capture device parameters.
type Config struct {
	SampleRate int
	FrameSize  int // samples per frame
}

// DefaultConfig captures mono 20 ms frames at the native capture rate.
func DefaultConfig() Config {
	return Config{
		SampleRate: audio.CaptureSampleRate,
		FrameSize:  audio.CaptureSampleRate / 50,
	}
}

// Pipeline owns the microphone and delivers captured frames on a channel.
// The device keeps running even while transmission is suppressed; gating
// happens at the consumer, per frame, so suppressed frames are simply
// dropped rather than queued.
//
// miniaudio exposes no echo-cancellation, noise-suppression, or AGC
// toggles; the backend VAD copes with unprocessed capture.
type Pipeline struct {
	config  Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	frames  chan []float32

	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device

	mu     sync.Mutex
	closed bool
}

// Open acquires the default capture device and starts it. Every partial
// acquisition is released if a later step fails.
func Open(config Config, m *metrics.Metrics, log zerolog.Logger) (*Pipeline, error) {
	p := &Pipeline{
		config:  config,
		log:     log.With().Str("component", "capture").Logger(),
		metrics: m,
		frames:  make(chan []float32, 8),
	}

	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	p.malgoCtx = malgoCtx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(audio.Channels)
	deviceConfig.SampleRate = uint32(config.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(config.FrameSize)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, inputSamples []byte, frameCount uint32) {
			p.onFrame(inputSamples)
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		p.releaseContext()
		return nil, fmt.Errorf("failed to open capture device: %w", err)
	}
	p.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		p.releaseContext()
		return nil, fmt.Errorf("failed to start capture device: %w", err)
	}

	p.log.Info().
		Int("sample_rate", config.SampleRate).
		Int("frame_size", config.FrameSize).
		Msg("capture started")

	return p, nil
}

// Frames returns the stream of captured frames. A full channel drops the
// frame; capture never blocks on a slow consumer.
func (p *Pipeline) Frames() <-chan []float32 {
	return p.frames
}

// onFrame converts one device callback's worth of S16 samples to floats
// and hands it off.
func (p *Pipeline) onFrame(inputSamples []byte) {
	samples, err := audio.DecodePCM16(inputSamples)
	if err != nil {
		p.log.Warn().Err(err).Msg("discarding malformed capture frame")
		return
	}
	if len(samples) == 0 {
		return
	}

	p.metrics.FramesCaptured.Inc()

	select {
	case p.frames <- samples:
	default:
		// Consumer is behind; this frame is lost, not retried.
	}
}

// Close stops and releases the device and audio context. Idempotent, and
// runs every release step even if an earlier one fails.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	if p.device != nil {
		if err := p.device.Stop(); err != nil {
			p.log.Warn().Err(err).Msg("capture device stop failed")
		}
		p.device.Uninit()
		p.device = nil
	}
	p.releaseContext()
	p.log.Info().Msg("capture released")
}

func (p *Pipeline) releaseContext() {
	if p.malgoCtx != nil {
		if err := p.malgoCtx.Uninit(); err != nil {
			p.log.Warn().Err(err).Msg("audio context uninit failed")
		}
		p.malgoCtx.Free()
		p.malgoCtx = nil
	}
}
