// ABOUTME: Audio output sink using the oto library
// ABOUTME: Plays PCM16 segments to completion on the system output device
package playback

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/voicelink/voicelink-go/internal/audio"
)

// OtoSink plays PCM16 mono segments through the default output device.
type OtoSink struct {
	otoCtx *oto.Context
	format audio.Format
}

// NewOtoSink initializes the output device for the given format. The oto
// context is process-global; one sink per session is enough.
func NewOtoSink(format audio.Format) (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	return &OtoSink{otoCtx: ctx, format: format}, nil
}

// Play writes one segment and blocks until its audio has finished, or the
// context is canceled.
func (s *OtoSink) Play(ctx context.Context, pcm []byte) error {
	player := s.otoCtx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close()

	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close suspends the output device.
func (s *OtoSink) Close() error {
	return s.otoCtx.Suspend()
}
