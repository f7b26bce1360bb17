// ABOUTME: Tests for the backend simulator
// ABOUTME: Drives a real WebSocket connection through one scripted turn
package sim

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/protocol"
)

func dialSim(t *testing.T, config Config) *websocket.Conn {
	t.Helper()

	s := New(config, zerolog.Nop())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendAppend(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	frame, err := protocol.EncodeAudioAppend([]byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("encode append failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write append failed: %v", err)
	}
}

func readText(t *testing.T, conn *websocket.Conn) (int, []byte) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return messageType, data
}

func expectControl(t *testing.T, conn *websocket.Conn, wantType string) protocol.Control {
	t.Helper()
	_, data := readText(t, conn)
	var ctrl protocol.Control
	if err := json.Unmarshal(data, &ctrl); err != nil {
		t.Fatalf("expected control frame, got %q: %v", data, err)
	}
	if ctrl.Type != wantType {
		t.Fatalf("expected %s control, got %+v", wantType, ctrl)
	}
	return ctrl
}

func TestSimulatorScriptsOneTurn(t *testing.T) {
	config := DefaultConfig()
	config.ChunksPerUtterance = 3
	config.ReplyText = "Hello!"
	config.ToneDuration = 10 * time.Millisecond

	conn := dialSim(t, config)

	sendAppend(t, conn)
	expectControl(t, conn, protocol.TypeSpeechStarted)

	sendAppend(t, conn)
	sendAppend(t, conn)
	expectControl(t, conn, protocol.TypeSpeechStopped)

	commit, err := protocol.EncodeAudioCommit()
	if err != nil {
		t.Fatalf("encode commit failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, commit); err != nil {
		t.Fatalf("write commit failed: %v", err)
	}

	delta := expectControl(t, conn, protocol.TypeTranscriptDelta)
	if delta.Delta == "" {
		t.Error("expected non-empty delta")
	}
	transcript := expectControl(t, conn, protocol.TypeTranscript)
	if !strings.Contains(transcript.Text, "utterance 1") {
		t.Errorf("unexpected transcript: %q", transcript.Text)
	}

	_, part1 := readText(t, conn)
	_, part2 := readText(t, conn)
	if string(part1)+string(part2) != "Hello!" {
		t.Errorf("unexpected reply text: %q + %q", part1, part2)
	}

	messageType, segment := readText(t, conn)
	if messageType != websocket.BinaryMessage {
		t.Fatalf("expected binary segment, got type %d", messageType)
	}
	if len(segment) == 0 || len(segment)%2 != 0 {
		t.Errorf("unexpected segment length %d", len(segment))
	}

	_, end := readText(t, conn)
	if string(end) != protocol.Sentinel {
		t.Errorf("expected sentinel, got %q", end)
	}
}

func TestToneLengthAndRange(t *testing.T) {
	segment := Tone(440.0, 100*time.Millisecond, 24000)

	if len(segment) != 2400*2 {
		t.Errorf("expected 4800 bytes, got %d", len(segment))
	}
}
