// ABOUTME: Encoder and decoder for framed duplex channel messages
// ABOUTME: Disambiguates control JSON from plain reply text by parseability
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/voicelink/voicelink-go/internal/audio"
)

// TextKind classifies a decoded inbound text frame.
type TextKind int

const (
	// KindControl is a structured control frame.
	KindControl TextKind = iota
	// KindReplyText is one fragment of the bot's spoken reply.
	KindReplyText
	// KindSentinel marks the end of the bot's utterance.
	KindSentinel
)

// InboundText is the result of decoding one inbound text frame.
type InboundText struct {
	Kind    TextKind
	Control Control // valid when Kind == KindControl
	Text    string  // valid when Kind == KindReplyText
}

// DecodeText decodes one inbound text frame. The channel multiplexes
// structured control JSON and raw reply fragments on the same text stream:
// a frame that fails structural JSON parsing is the sentinel if it matches
// the literal, otherwise a reply fragment.
//
// A reply fragment that happens to be valid control JSON would be
// misclassified here; the backend would need an explicit framing byte to
// close that hole.
func DecodeText(data []byte) InboundText {
	// A bare JSON literal like null or {} also unmarshals cleanly; only a
	// frame carrying a type discriminator counts as control.
	var ctrl Control
	if err := json.Unmarshal(data, &ctrl); err == nil && ctrl.Type != "" {
		return InboundText{Kind: KindControl, Control: ctrl}
	}

	text := string(data)
	if text == Sentinel {
		return InboundText{Kind: KindSentinel}
	}
	return InboundText{Kind: KindReplyText, Text: text}
}

// EncodeAudioAppend frames one encoded capture chunk for transmission.
func EncodeAudioAppend(chunk []byte) ([]byte, error) {
	frame := AudioAppend{
		Type:  TypeAudioAppend,
		Audio: audio.ToTransportText(chunk),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audio_append: %w", err)
	}
	return data, nil
}

// EncodeAudioCommit frames the end-of-user-speech request.
func EncodeAudioCommit() ([]byte, error) {
	data, err := json.Marshal(AudioCommit{Type: TypeAudioCommit})
	if err != nil {
		return nil, fmt.Errorf("failed to encode audio_commit: %w", err)
	}
	return data, nil
}
