// ABOUTME: Headless transcript sink and state observer backed by the logger
// ABOUTME: Used when the client runs without the TUI
package app

import (
	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/session"
)

// LogSink writes the conversation to the structured log. It implements
// both session.TranscriptSink and session.Observer.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a sink over the given logger.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "transcript").Logger()}
}

func (s *LogSink) AppendTurn(user string, bot session.BotContent) {
	s.log.Info().
		Str("user", user).
		Str("bot_type", bot.Type).
		Str("bot", bot.Content).
		Msg("turn completed")
}

func (s *LogSink) AppendSystemNotice(text string) {
	s.log.Warn().Msg(text)
}

func (s *LogSink) StateChanged(state session.State) {
	s.log.Info().Str("state", state.String()).Msg("state changed")
}

func (s *LogSink) DeltaUpdated(text string) {
	if text != "" {
		s.log.Debug().Str("delta", text).Msg("transcript delta")
	}
}
