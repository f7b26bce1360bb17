// ABOUTME: Conversational turn states for the voice session
// ABOUTME: Defines the state enum and the capture gate predicate
package session

// State is the session's position in the conversational turn cycle.
type State int

const (
	// StateIdle means no session activity; capture is not armed.
	StateIdle State = iota
	// StateListening means capture frames are being transmitted.
	StateListening
	// StateProcessing means the user's audio has been committed and the
	// backend is reasoning.
	StateProcessing
	// StateBotGenerating means the backend is streaming its reply.
	StateBotGenerating
	// StateClosed means the channel is gone and the session is over.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateBotGenerating:
		return "bot_generating"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// botActive reports whether the backend owns the turn. Capture frames are
// never transmitted while this holds.
func (s State) botActive() bool {
	return s == StateProcessing || s == StateBotGenerating
}
