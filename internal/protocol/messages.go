// ABOUTME: Duplex channel message type definitions
// ABOUTME: Defines control frame structs for both directions
package protocol

// Control frame type values.
const (
	TypeAudioAppend     = "audio_append"
	TypeAudioCommit     = "audio_commit"
	TypeSpeechStarted   = "speech_started"
	TypeSpeechStopped   = "speech_stopped"
	TypeTranscript      = "transcript"
	TypeTranscriptDelta = "transcript_delta"
	TypeImage           = "image"
	TypeError           = "error"
)

// Sentinel is the literal text frame marking the end of a bot utterance.
const Sentinel = "[END]"

// AudioAppend carries one transport-encoded capture chunk to the backend.
type AudioAppend struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

// AudioCommit tells the backend the user finished speaking.
type AudioCommit struct {
	Type string `json:"type"`
}

// Control is an inbound control frame. One struct covers every inbound
// type; unused fields stay empty.
type Control struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`    // transcript
	Delta   string `json:"delta,omitempty"`   // transcript_delta
	URL     string `json:"url,omitempty"`     // image
	Message string `json:"message,omitempty"` // error
}
