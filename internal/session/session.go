// ABOUTME: Turn-taking state machine coordinating capture, channel, playback
// ABOUTME: Single event-loop goroutine owns every mutable session flag
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/audio"
	"github.com/voicelink/voicelink-go/internal/client"
	"github.com/voicelink/voicelink-go/internal/metrics"
	"github.com/voicelink/voicelink-go/internal/protocol"
)

// Duplex is the session's view of the channel to the backend.
type Duplex interface {
	Events() <-chan client.Event
	SendAudioChunk(chunk []byte) error
	SendCommit() error
	Close()
}

// Capture is the session's view of the microphone pipeline.
type Capture interface {
	Frames() <-chan []float32
	Close()
}

// Player is the session's view of the playback queue.
type Player interface {
	Enqueue(segment []byte)
	Drained() <-chan struct{}
	IsPlaying() bool
	Clear()
	Close()
}

// Config holds session tuning parameters.
type Config struct {
	CaptureRate int
	WireRate    int
	// SettleDelay is the pause between both re-arm conditions holding and
	// capture actually re-arming, absorbing trailing backend state.
	SettleDelay time.Duration
}

// DefaultConfig returns the standard session parameters.
func DefaultConfig() Config {
	return Config{
		CaptureRate: audio.CaptureSampleRate,
		WireRate:    audio.WireSampleRate,
		SettleDelay: 500 * time.Millisecond,
	}
}

// Session drives one live conversation. All fields below the channels are
// owned exclusively by the run goroutine; nothing else reads or writes
// them. At most one Session is live per conversation.
type Session struct {
	id       uuid.UUID
	config   Config
	channel  Duplex
	capture  Capture
	player   Player
	sink     TranscriptSink
	observer Observer
	log      zerolog.Logger
	metrics  *metrics.Metrics

	rearmCh chan struct{}
	stopCh  chan struct{}
	done    chan struct{}
	stop    sync.Once

	// Event-loop-owned state.
	state           State
	generationDone  bool
	playbackDrained bool
	rearmScheduled  bool
	speechBuffer    strings.Builder
	deltaBuffer     strings.Builder
	pendingImage    string
	pendingTurn     *Turn
}

// New assembles a session over already-acquired collaborators. The caller
// owns acquisition order; the session owns teardown order.
func New(channel Duplex, cap Capture, player Player, sink TranscriptSink,
	observer Observer, config Config, m *metrics.Metrics, log zerolog.Logger) *Session {
	if observer == nil {
		observer = nopObserver{}
	}

	id := uuid.New()
	return &Session{
		id:       id,
		config:   config,
		channel:  channel,
		capture:  cap,
		player:   player,
		sink:     sink,
		observer: observer,
		log:      log.With().Str("component", "session").Str("session_id", id.String()).Logger(),
		metrics:  m,
		rearmCh:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		state:    StateIdle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Start arms capture and launches the event loop. The capture device is
// already acquired, so the session goes straight to listening.
func (s *Session) Start() {
	s.metrics.SessionsStarted.Inc()
	s.setState(StateListening)
	go s.run()
}

// Stop requests an orderly teardown: close the channel, release capture,
// clear playback, reset to idle. Safe to call any number of times, from
// any goroutine.
func (s *Session) Stop() {
	s.stop.Do(func() { close(s.stopCh) })
	<-s.done
}

// Done is closed once the session has fully torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// run is the single-threaded event loop. Handlers never run concurrently,
// so the state fields need no locking.
func (s *Session) run() {
	defer close(s.done)

	for {
		select {
		case frame := <-s.capture.Frames():
			s.handleFrame(frame)

		case ev, ok := <-s.channel.Events():
			if !ok {
				s.teardown(StateClosed)
				return
			}
			if terminal := s.handleChannelEvent(ev); terminal {
				s.teardown(StateClosed)
				return
			}

		case <-s.player.Drained():
			s.handleDrained()

		case <-s.rearmCh:
			s.handleRearm()

		case <-s.stopCh:
			s.teardown(StateIdle)
			return
		}
	}
}

// handleFrame transmits one capture frame, or drops it while the gate is
// closed. The gate is evaluated here, per frame, at consume time; frames
// are never queued for later.
func (s *Session) handleFrame(frame []float32) {
	if s.state != StateListening {
		s.metrics.FramesGated.Inc()
		return
	}

	resampled := audio.Resample(frame, s.config.CaptureRate, s.config.WireRate)
	chunk := audio.EncodePCM16(resampled)

	if err := s.channel.SendAudioChunk(chunk); err != nil {
		s.log.Warn().Err(err).Msg("failed to send audio chunk")
		s.metrics.SendErrors.Inc()
		return
	}
	s.metrics.ChunksSent.Inc()
}

// handleChannelEvent reacts to one inbound channel event. Returns true
// when the session must tear down.
func (s *Session) handleChannelEvent(ev client.Event) bool {
	switch ev.Kind {
	case client.EventControl:
		s.handleControl(ev.Control)

	case client.EventSegment:
		s.playbackDrained = false
		s.player.Enqueue(ev.Segment)
		s.markGenerating()

	case client.EventReplyText:
		s.speechBuffer.WriteString(ev.Text)
		s.markGenerating()

	case client.EventSentinel:
		s.handleSentinel()

	case client.EventClosed:
		if ev.Err != nil {
			s.log.Error().Err(ev.Err).Msg("channel failed")
			s.sink.AppendSystemNotice("Connection lost: " + ev.Err.Error())
			s.metrics.SessionErrors.Inc()
		} else {
			s.log.Info().Msg("channel closed by backend")
		}
		return true
	}
	return false
}

func (s *Session) handleControl(ctrl protocol.Control) {
	switch ctrl.Type {
	case protocol.TypeSpeechStarted:
		// Valid while processing too; it only re-confirms the listening
		// display, never re-opens the gate or re-sends a commit.
		s.log.Debug().Str("state", s.state.String()).Msg("speech started")
		s.observer.StateChanged(s.state)

	case protocol.TypeSpeechStopped:
		s.handleSpeechStopped()

	case protocol.TypeTranscript:
		s.handleTranscript(ctrl.Text)

	case protocol.TypeTranscriptDelta:
		s.deltaBuffer.WriteString(ctrl.Delta)
		s.observer.DeltaUpdated(s.deltaBuffer.String())
		s.metrics.TranscriptsDeltas.Inc()

	case protocol.TypeImage:
		s.pendingImage = ctrl.URL
		s.markGenerating()

	case protocol.TypeError:
		s.handleBackendError(ctrl.Message)

	default:
		s.log.Debug().Str("type", ctrl.Type).Msg("ignoring unrecognized control frame")
	}
}

// handleSpeechStopped commits the user's utterance and hands the turn to
// the backend. A duplicate while the backend already owns the turn is
// ignored.
func (s *Session) handleSpeechStopped() {
	if s.state.botActive() {
		s.log.Warn().Str("state", s.state.String()).Msg("duplicate speech_stopped ignored")
		s.metrics.DuplicateStops.Inc()
		return
	}
	if s.state != StateListening {
		s.log.Debug().Str("state", s.state.String()).Msg("speech_stopped outside a listening turn")
		return
	}

	if err := s.channel.SendCommit(); err != nil {
		s.log.Error().Err(err).Msg("failed to send commit")
		s.metrics.SendErrors.Inc()
		return
	}
	s.metrics.CommitsSent.Inc()

	// Commit sent means generation begins; both re-arm conditions reset
	// here, at the start of the bot's turn.
	s.generationDone = false
	s.playbackDrained = !s.player.IsPlaying()
	s.rearmScheduled = false
	s.pendingImage = ""
	s.setState(StateProcessing)
}

// markGenerating flips processing to bot_generating on the first piece of
// reply output.
func (s *Session) markGenerating() {
	if s.state == StateProcessing {
		s.setState(StateBotGenerating)
	}
}

// handleTranscript records the user's final utterance text as a pending
// turn, deduplicating a repeated transcript for the same utterance.
func (s *Session) handleTranscript(text string) {
	s.metrics.TranscriptsFinal.Inc()

	if s.pendingTurn != nil && !s.pendingTurn.finalized && s.pendingTurn.User == text {
		s.log.Debug().Msg("duplicate transcript for pending turn")
		return
	}

	s.pendingTurn = newTurn(text)
	s.deltaBuffer.Reset()
	s.observer.DeltaUpdated("")
	s.log.Info().Str("user_text", text).Msg("transcript received")
}

// handleSentinel finalizes the bot side of the pending turn and marks
// generation finished. A duplicate sentinel after finalization changes
// nothing.
func (s *Session) handleSentinel() {
	if s.pendingTurn != nil && !s.pendingTurn.finalized {
		// An empty speech buffer is a legitimate audio-only reply; the
		// turn still finalizes, with empty bot text. An image frame
		// received during generation wins over reply text.
		bot := BotContent{Type: "text", Content: s.speechBuffer.String()}
		if s.pendingImage != "" {
			bot = BotContent{Type: "image", Content: s.pendingImage}
		}
		s.pendingTurn.Bot = bot
		s.pendingTurn.finalized = true
		s.sink.AppendTurn(s.pendingTurn.User, s.pendingTurn.Bot)
		s.metrics.TurnsCompleted.Inc()
		s.log.Info().Str("turn_id", s.pendingTurn.ID.String()).Msg("turn finalized")
	} else if s.speechBuffer.Len() > 0 {
		s.log.Warn().Msg("reply text arrived with no pending turn")
	}

	s.speechBuffer.Reset()
	s.pendingImage = ""
	s.generationDone = true
	s.maybeScheduleRearm()
}

// handleBackendError reports a backend failure and recovers toward
// listening; the channel itself is still up.
func (s *Session) handleBackendError(message string) {
	s.log.Error().Str("message", message).Msg("backend reported error")
	s.sink.AppendSystemNotice("Backend error: " + message)
	s.metrics.SessionErrors.Inc()

	s.speechBuffer.Reset()
	s.generationDone = true
	s.playbackDrained = !s.player.IsPlaying()
	s.maybeScheduleRearm()
}

// handleDrained records playback completion and evaluates the re-arm join.
func (s *Session) handleDrained() {
	s.playbackDrained = true
	s.maybeScheduleRearm()
}

// maybeScheduleRearm is the two-flag join: generation finished AND
// playback drained, in either order, schedules exactly one settle timer.
func (s *Session) maybeScheduleRearm() {
	if !s.generationDone || !s.playbackDrained || s.rearmScheduled {
		return
	}
	if !s.state.botActive() {
		return
	}
	s.rearmScheduled = true

	time.AfterFunc(s.config.SettleDelay, func() {
		select {
		case s.rearmCh <- struct{}{}:
		default:
		}
	})
}

// handleRearm returns to listening after the settle delay. A trailing
// segment arriving inside the settle window invalidates the join; the
// next drained event re-runs it.
func (s *Session) handleRearm() {
	if !s.state.botActive() {
		return
	}
	s.rearmScheduled = false
	if !s.generationDone || !s.playbackDrained {
		s.log.Debug().Msg("re-arm deferred by trailing playback")
		return
	}
	s.deltaBuffer.Reset()
	s.setState(StateListening)
	s.log.Info().Msg("capture re-armed")
}

func (s *Session) setState(state State) {
	if s.state == state {
		return
	}
	s.log.Debug().Str("from", s.state.String()).Str("to", state.String()).Msg("state change")
	s.state = state
	s.observer.StateChanged(state)
}

// teardown releases everything in a fixed order. Each step runs even if an
// earlier one misbehaves; the channel close is first so no further frames
// race the release of capture and playback.
func (s *Session) teardown(final State) {
	s.channel.Close()
	s.capture.Close()
	s.player.Clear()
	s.player.Close()

	s.generationDone = false
	s.playbackDrained = false
	s.rearmScheduled = false
	s.speechBuffer.Reset()
	s.deltaBuffer.Reset()
	s.pendingImage = ""
	s.setState(final)
	s.log.Info().Str("state", final.String()).Msg("session torn down")
}
