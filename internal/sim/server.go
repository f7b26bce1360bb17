// ABOUTME: Scripted backend simulator for exercising the client end to end
// ABOUTME: Detects utterances by chunk count and replies with text and tone audio
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/audio"
	"github.com/voicelink/voicelink-go/internal/protocol"
)

// Config holds simulator tuning parameters.
type Config struct {
	Addr string
	// ChunksPerUtterance is how many audio_append frames count as one
	// spoken utterance before the simulator ends the user's turn.
	ChunksPerUtterance int
	ReplyText          string
	ToneHz             float64
	ToneDuration       time.Duration
}

// DefaultConfig returns the standard simulator parameters.
func DefaultConfig() Config {
	return Config{
		Addr:               ":8000",
		ChunksPerUtterance: 50,
		ReplyText:          "This is a simulated reply.",
		ToneHz:             440.0,
		ToneDuration:       300 * time.Millisecond,
	}
}

// Server is a stand-in backend speaking the client's duplex protocol.
type Server struct {
	config   Config
	log      zerolog.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
	wg         sync.WaitGroup
}

// New creates a simulator server.
func New(config Config, log zerolog.Logger) *Server {
	return &Server{
		config: config,
		log:    log.With().Str("component", "sim").Logger(),
	}
}

// Handler returns the WebSocket endpoint handler.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleRealtime)
}

// Start listens on the configured address. Blocks until Stop.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/realtime", s.Handler())

	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Info().Str("addr", s.config.Addr).Msg("simulator listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("simulator server failed: %w", err)
	}
	return nil
}

// Stop shuts the listener down and waits for live connections.
func (s *Server) Stop() {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
	s.wg.Wait()
}

func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("upgrade failed")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.serveConn(conn)
	}()
}

// serveConn runs one scripted conversation loop: count appended chunks
// into an utterance, end the user's turn, and answer each commit.
func (s *Server) serveConn(conn *websocket.Conn) {
	defer conn.Close()
	s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("client connected")

	chunks := 0
	utterances := 0

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			s.log.Info().Err(err).Msg("client disconnected")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var frame struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			s.log.Warn().Msg("ignoring non-JSON frame from client")
			continue
		}

		switch frame.Type {
		case protocol.TypeAudioAppend:
			chunks++
			if chunks == 1 {
				s.sendControl(conn, protocol.Control{Type: protocol.TypeSpeechStarted})
			}
			if chunks >= s.config.ChunksPerUtterance {
				chunks = 0
				s.sendControl(conn, protocol.Control{Type: protocol.TypeSpeechStopped})
			}

		case protocol.TypeAudioCommit:
			utterances++
			s.reply(conn, utterances)

		default:
			s.log.Debug().Str("type", frame.Type).Msg("ignoring frame")
		}
	}
}

// reply plays the scripted bot turn: transcript, streamed deltas and reply
// text, one tone segment, then the end sentinel.
func (s *Server) reply(conn *websocket.Conn, n int) {
	transcript := fmt.Sprintf("Simulated utterance %d", n)
	s.sendControl(conn, protocol.Control{Type: protocol.TypeTranscriptDelta, Delta: "Simulated"})
	s.sendControl(conn, protocol.Control{Type: protocol.TypeTranscript, Text: transcript})

	half := len(s.config.ReplyText) / 2
	s.sendText(conn, s.config.ReplyText[:half])
	s.sendText(conn, s.config.ReplyText[half:])

	segment := Tone(s.config.ToneHz, s.config.ToneDuration, audio.WireSampleRate)
	if err := conn.WriteMessage(websocket.BinaryMessage, segment); err != nil {
		s.log.Warn().Err(err).Msg("failed to send segment")
	}

	s.sendText(conn, protocol.Sentinel)
}

func (s *Server) sendControl(conn *websocket.Conn, ctrl protocol.Control) {
	data, err := json.Marshal(ctrl)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode control frame")
		return
	}
	s.sendText(conn, string(data))
}

func (s *Server) sendText(conn *websocket.Conn, text string) {
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		s.log.Warn().Err(err).Msg("failed to send text frame")
	}
}
