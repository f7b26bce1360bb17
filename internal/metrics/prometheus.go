// ABOUTME: Prometheus metrics for the voice session engine
// ABOUTME: Tracks capture, transport, playback, and turn counters
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the engine.
type Metrics struct {
	// Capture metrics
	FramesCaptured prometheus.Counter
	FramesGated    prometheus.Counter
	ChunksSent     prometheus.Counter
	SendErrors     prometheus.Counter

	// Turn metrics
	CommitsSent       prometheus.Counter
	DuplicateStops    prometheus.Counter
	TurnsCompleted    prometheus.Counter
	TranscriptsFinal  prometheus.Counter
	TranscriptsDeltas prometheus.Counter

	// Playback metrics
	SegmentsEnqueued prometheus.Counter
	SegmentsPlayed   prometheus.Counter
	SegmentsDropped  prometheus.Counter
	QueueDepth       prometheus.Gauge

	// Session metrics
	SessionsStarted prometheus.Counter
	SessionErrors   prometheus.Counter
}

// New creates and registers all engine metrics on a fresh registry and
// returns both. A private registry keeps tests from colliding on the
// default global one.
func New() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		FramesCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_frames_captured_total",
			Help: "Total microphone frames delivered by the capture device",
		}),
		FramesGated: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_frames_gated_total",
			Help: "Total capture frames dropped while the bot was active",
		}),
		ChunksSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_chunks_sent_total",
			Help: "Total encoded audio chunks transmitted to the backend",
		}),
		SendErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_send_errors_total",
			Help: "Total outbound frame write failures",
		}),
		CommitsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_commits_sent_total",
			Help: "Total audio_commit frames sent",
		}),
		DuplicateStops: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_duplicate_stops_total",
			Help: "Total speech_stopped frames ignored while already processing",
		}),
		TurnsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_turns_completed_total",
			Help: "Total conversation turns finalized",
		}),
		TranscriptsFinal: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_transcripts_final_total",
			Help: "Total final user transcripts received",
		}),
		TranscriptsDeltas: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_transcript_deltas_total",
			Help: "Total incremental transcript fragments received",
		}),
		SegmentsEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_segments_enqueued_total",
			Help: "Total playback segments queued",
		}),
		SegmentsPlayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_segments_played_total",
			Help: "Total playback segments played to completion",
		}),
		SegmentsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_segments_dropped_total",
			Help: "Total malformed playback segments dropped",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voicelink_playback_queue_depth",
			Help: "Current number of segments waiting in the playback queue",
		}),
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_sessions_started_total",
			Help: "Total voice sessions started",
		}),
		SessionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicelink_session_errors_total",
			Help: "Total session-level errors reported to the notice sink",
		}),
	}

	return m, reg
}

// Handler returns an HTTP handler exposing the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
