// ABOUTME: WebSocket duplex channel to the voice-assistant backend
// ABOUTME: Handles connection, outbound frames, and inbound event routing
package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/protocol"
)

// EventKind classifies inbound channel events.
type EventKind int

const (
	// EventControl is a structured control frame.
	EventControl EventKind = iota
	// EventSegment is one binary PCM16 playback segment.
	EventSegment
	// EventReplyText is one fragment of the bot's reply text.
	EventReplyText
	// EventSentinel is the end-of-utterance marker.
	EventSentinel
	// EventClosed reports the channel closing; Err carries the cause
	// (nil on a clean close).
	EventClosed
)

// Event is one inbound occurrence on the duplex channel, delivered in
// arrival order.
type Event struct {
	Kind    EventKind
	Control protocol.Control
	Segment []byte
	Text    string
	Err     error
}

// Channel is a connected duplex channel. Inbound frames are decoded by the
// reader goroutine and fanned out on Events; outbound frames are written
// directly.
type Channel struct {
	conn   *websocket.Conn
	log    zerolog.Logger
	events chan Event

	mu        sync.Mutex
	connected bool

	ctx    context.Context
	cancel context.CancelFunc
}

// Dial connects to the backend endpoint and starts the reader. An empty
// apiKey omits the Authorization header.
func Dial(url, apiKey string, log zerolog.Logger) (*Channel, error) {
	var header http.Header
	if apiKey != "" {
		header = http.Header{"Authorization": []string{"Bearer " + apiKey}}
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Channel{
		conn:      conn,
		log:       log.With().Str("component", "channel").Logger(),
		events:    make(chan Event, 64),
		connected: true,
		ctx:       ctx,
		cancel:    cancel,
	}

	go c.readLoop()

	c.log.Info().Str("url", url).Msg("channel connected")
	return c, nil
}

// Events returns the inbound event stream. The channel is closed after an
// EventClosed has been delivered.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// SendAudioChunk transmits one encoded capture chunk.
func (c *Channel) SendAudioChunk(chunk []byte) error {
	frame, err := protocol.EncodeAudioAppend(chunk)
	if err != nil {
		return err
	}
	return c.writeText(frame)
}

// SendCommit transmits the end-of-user-speech request.
func (c *Channel) SendCommit() error {
	frame, err := protocol.EncodeAudioCommit()
	if err != nil {
		return err
	}
	return c.writeText(frame)
}

func (c *Channel) writeText(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("channel not connected")
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// readLoop reads and routes inbound frames until the connection drops.
func (c *Channel) readLoop() {
	for {
		select {
		case <-c.ctx.Done():
			c.deliver(Event{Kind: EventClosed})
			close(c.events)
			return
		default:
		}

		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Debug().Err(err).Msg("read loop ending")
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				err = nil
			}
			c.deliver(Event{Kind: EventClosed, Err: err})
			close(c.events)
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			c.deliver(Event{Kind: EventSegment, Segment: data})
		case websocket.TextMessage:
			c.deliver(c.decodeTextFrame(data))
		}
	}
}

func (c *Channel) decodeTextFrame(data []byte) Event {
	decoded := protocol.DecodeText(data)
	switch decoded.Kind {
	case protocol.KindControl:
		return Event{Kind: EventControl, Control: decoded.Control}
	case protocol.KindSentinel:
		return Event{Kind: EventSentinel}
	default:
		return Event{Kind: EventReplyText, Text: decoded.Text}
	}
}

func (c *Channel) deliver(ev Event) {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		c.log.Info().Msg("channel closed")
	}
}

// IsConnected reports whether the channel is still open.
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
