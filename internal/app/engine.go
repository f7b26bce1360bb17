// ABOUTME: Application orchestration for the voice session engine
// ABOUTME: Wires config, channel, capture, playback, and session together
package app

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/audio"
	"github.com/voicelink/voicelink-go/internal/capture"
	"github.com/voicelink/voicelink-go/internal/client"
	"github.com/voicelink/voicelink-go/internal/config"
	"github.com/voicelink/voicelink-go/internal/media"
	"github.com/voicelink/voicelink-go/internal/metrics"
	"github.com/voicelink/voicelink-go/internal/playback"
	"github.com/voicelink/voicelink-go/internal/session"
)

// App owns one conversation's worth of engine components and at most one
// live session at a time.
type App struct {
	config   *config.Config
	log      zerolog.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry

	mu         sync.Mutex
	sess       *session.Session
	cache      *media.Cache
	metricsSrv *http.Server
}

// New creates the application shell.
func New(cfg *config.Config, log zerolog.Logger) *App {
	m, reg := metrics.New()
	return &App{
		config:   cfg,
		log:      log,
		metrics:  m,
		registry: reg,
	}
}

// StartSession opens the duplex channel, acquires the capture device and
// output sink, and starts a session delivering to the given sinks. A
// session already live is fully stopped first.
func (a *App) StartSession(sink session.TranscriptSink, observer session.Observer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sess != nil {
		a.sess.Stop()
		a.sess = nil
	}

	if a.cache == nil {
		cache, err := media.NewCache(a.log)
		if err != nil {
			// Image replies degrade to bare URLs without the cache.
			a.log.Warn().Err(err).Msg("media cache unavailable")
		} else {
			a.cache = cache
		}
	}
	sink = newMediaSink(sink, a.cache, a.log)

	channel, err := client.Dial(a.config.Backend.URL, a.config.Backend.APIKey, a.log)
	if err != nil {
		sink.AppendSystemNotice("Could not reach the assistant: " + err.Error())
		return fmt.Errorf("channel setup failed: %w", err)
	}

	captureConfig := capture.Config{
		SampleRate: a.config.Audio.CaptureRate,
		FrameSize:  a.config.FrameSize(),
	}
	pipeline, err := capture.Open(captureConfig, a.metrics, a.log)
	if err != nil {
		channel.Close()
		sink.AppendSystemNotice("Microphone unavailable: " + err.Error())
		return fmt.Errorf("capture setup failed: %w", err)
	}

	outSink, err := playback.NewOtoSink(audio.Format{
		SampleRate: a.config.Audio.WireRate,
		Channels:   audio.Channels,
	})
	if err != nil {
		pipeline.Close()
		channel.Close()
		sink.AppendSystemNotice("Audio output unavailable: " + err.Error())
		return fmt.Errorf("playback setup failed: %w", err)
	}
	queue := playback.NewQueue(outSink, a.metrics, a.log)

	sessionConfig := session.Config{
		CaptureRate: a.config.Audio.CaptureRate,
		WireRate:    a.config.Audio.WireRate,
		SettleDelay: a.config.SettleDelay(),
	}

	a.sess = session.New(channel, pipeline, queue, sink, observer,
		sessionConfig, a.metrics, a.log)
	a.sess.Start()

	a.log.Info().Str("session_id", a.sess.ID().String()).Msg("session started")
	return nil
}

// StopSession tears the live session down. No-op when none is live.
func (a *App) StopSession() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sess != nil {
		a.sess.Stop()
		a.sess = nil
	}
}

// SessionDone exposes the live session's completion signal, or nil when no
// session is live.
func (a *App) SessionDone() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sess == nil {
		return nil
	}
	return a.sess.Done()
}

// ServeMetrics exposes /metrics on the configured address.
func (a *App) ServeMetrics() {
	if !a.config.Metrics.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))

	a.metricsSrv = &http.Server{
		Addr:              a.config.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.log.Info().Str("addr", a.config.Metrics.Address).Msg("metrics listening")
		if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Warn().Err(err).Msg("metrics server stopped")
		}
	}()
}

// Shutdown stops the session and the metrics server.
func (a *App) Shutdown() {
	a.StopSession()
	if a.metricsSrv != nil {
		a.metricsSrv.Close()
	}
}
