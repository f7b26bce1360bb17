// ABOUTME: Conversation turn record and collaborator sink contracts
// ABOUTME: Defines what the engine hands to the surrounding transcript UI
package session

import "github.com/google/uuid"

// BotContent is the bot side of a finished exchange.
type BotContent struct {
	Type    string // "text" or "image"
	Content string // reply text, or an image URL
}

// Turn is one user-utterance/bot-reply exchange. The bot side moves from
// empty to final exactly once.
type Turn struct {
	ID        uuid.UUID
	User      string
	Bot       BotContent
	finalized bool
}

func newTurn(user string) *Turn {
	return &Turn{ID: uuid.New(), User: user}
}

// TranscriptSink receives finished exchanges and system notices. The chat
// UI around the engine implements this; the engine never renders anything
// itself.
type TranscriptSink interface {
	AppendTurn(user string, bot BotContent)
	AppendSystemNotice(text string)
}

// Observer receives display-only signals: state changes and incremental
// transcript text. Neither affects the turn cycle.
type Observer interface {
	StateChanged(state State)
	DeltaUpdated(text string)
}

type nopObserver struct{}

func (nopObserver) StateChanged(State)  {}
func (nopObserver) DeltaUpdated(string) {}
