// ABOUTME: Transcript sink decorator resolving image replies to local files
// ABOUTME: Falls back to the original URL when the download fails
package app

import (
	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/media"
	"github.com/voicelink/voicelink-go/internal/session"
)

// mediaSink fetches image turn content into the local cache so the display
// layer can show a file path instead of a bare URL.
type mediaSink struct {
	next  session.TranscriptSink
	cache *media.Cache
	log   zerolog.Logger
}

func newMediaSink(next session.TranscriptSink, cache *media.Cache, log zerolog.Logger) *mediaSink {
	return &mediaSink{next: next, cache: cache, log: log}
}

func (s *mediaSink) AppendTurn(user string, bot session.BotContent) {
	if bot.Type == "image" && s.cache != nil {
		path, err := s.cache.Fetch(bot.Content)
		if err != nil {
			s.log.Warn().Err(err).Str("url", bot.Content).Msg("image fetch failed")
		} else if path != "" {
			bot.Content = path
		}
	}
	s.next.AppendTurn(user, bot)
}

func (s *mediaSink) AppendSystemNotice(text string) {
	s.next.AppendSystemNotice(text)
}
