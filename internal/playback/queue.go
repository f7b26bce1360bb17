// ABOUTME: Ordered FIFO playback queue for synthesized speech segments
// ABOUTME: Plays segments back-to-back and signals when fully drained
package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/audio"
	"github.com/voicelink/voicelink-go/internal/metrics"
)

// Sink plays one PCM16 segment to completion, returning early only if the
// context is canceled.
type Sink interface {
	Play(ctx context.Context, pcm []byte) error
	Close() error
}

// Queue plays PCM16 segments strictly in enqueue order with no overlap.
// Draining starts on the first enqueue and an event is emitted each time
// the queue runs empty.
type Queue struct {
	sink    Sink
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu            sync.Mutex
	pending       [][]byte
	playing       bool
	cancelCurrent context.CancelFunc

	drained chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewQueue creates an idle playback queue over the given sink.
func NewQueue(sink Sink, m *metrics.Metrics, log zerolog.Logger) *Queue {
	ctx, cancel := context.WithCancel(context.Background())

	return &Queue{
		sink:    sink,
		log:     log.With().Str("component", "playback").Logger(),
		metrics: m,
		drained: make(chan struct{}, 4),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Enqueue appends a segment to the tail. If no playback is in flight,
// draining starts immediately.
func (q *Queue) Enqueue(segment []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, segment)
	q.metrics.SegmentsEnqueued.Inc()
	q.metrics.QueueDepth.Set(float64(len(q.pending)))

	if !q.playing {
		q.playing = true
		go q.drain()
	}
}

// Drained reports each transition of the queue to empty.
func (q *Queue) Drained() <-chan struct{} {
	return q.drained
}

// IsPlaying reports whether a segment is currently in flight or queued.
func (q *Queue) IsPlaying() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// drain pops and plays segments until the queue is empty, then emits one
// drained event. Exactly one drain goroutine runs at a time.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.playing = false
			q.metrics.QueueDepth.Set(0)
			select {
			case q.drained <- struct{}{}:
			default:
			}
			q.mu.Unlock()
			return
		}

		segment := q.pending[0]
		q.pending = q.pending[1:]
		q.metrics.QueueDepth.Set(float64(len(q.pending)))

		playCtx, cancel := context.WithCancel(q.ctx)
		q.cancelCurrent = cancel
		q.mu.Unlock()

		q.play(playCtx, segment)
		cancel()
	}
}

// play validates and plays one segment. Malformed segments are dropped and
// draining continues with the next one.
func (q *Queue) play(ctx context.Context, segment []byte) {
	if len(segment) == 0 || len(segment)%audio.BytesPerSample != 0 {
		q.log.Warn().Int("bytes", len(segment)).Msg("dropping malformed segment")
		q.metrics.SegmentsDropped.Inc()
		return
	}

	if err := q.sink.Play(ctx, segment); err != nil {
		// Clear and Close interrupt by cancellation; only genuine
		// playback failures count as drops.
		if errors.Is(err, context.Canceled) {
			q.log.Debug().Msg("segment playback interrupted")
			return
		}
		q.log.Warn().Err(err).Msg("segment playback failed")
		q.metrics.SegmentsDropped.Inc()
		return
	}
	q.metrics.SegmentsPlayed.Inc()
}

// Clear discards all queued segments and interrupts the in-flight one,
// without waiting for it to finish.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = nil
	q.metrics.QueueDepth.Set(0)
	if q.cancelCurrent != nil {
		q.cancelCurrent()
	}
}

// Close clears the queue and releases the sink.
func (q *Queue) Close() {
	q.Clear()
	q.cancel()
	if err := q.sink.Close(); err != nil {
		q.log.Warn().Err(err).Msg("sink close failed")
	}
}
