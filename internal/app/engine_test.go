// ABOUTME: Tests for application orchestration and the sink decorators
// ABOUTME: Covers setup failure reporting and image reply resolution
package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voicelink/voicelink-go/internal/config"
	"github.com/voicelink/voicelink-go/internal/media"
	"github.com/voicelink/voicelink-go/internal/session"
)

type recordingSink struct {
	mu      sync.Mutex
	turns   []session.BotContent
	users   []string
	notices []string
}

func (r *recordingSink) AppendTurn(user string, bot session.BotContent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user)
	r.turns = append(r.turns, bot)
}

func (r *recordingSink) AppendSystemNotice(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, text)
}

func TestStartSessionReportsUnreachableBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.URL = "ws://127.0.0.1:1/realtime"

	a := New(cfg, zerolog.Nop())
	sink := &recordingSink{}

	err := a.StartSession(sink, nil)
	if err == nil {
		t.Fatal("expected error for unreachable backend")
	}
	if len(sink.notices) != 1 || !strings.Contains(sink.notices[0], "Could not reach") {
		t.Errorf("expected setup notice, got %v", sink.notices)
	}
	if a.SessionDone() != nil {
		t.Error("expected no live session after failed start")
	}
}

func TestStopSessionWithoutSession(t *testing.T) {
	a := New(config.Default(), zerolog.Nop())
	a.StopSession() // no-op
	a.Shutdown()
}

func TestServeMetricsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false

	a := New(cfg, zerolog.Nop())
	a.ServeMetrics()
	if a.metricsSrv != nil {
		t.Error("expected no metrics server when disabled")
	}
}

func TestMediaSinkResolvesImageTurns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image bytes"))
	}))
	defer srv.Close()

	cache, err := media.NewCache(zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer cache.Clear()

	inner := &recordingSink{}
	sink := newMediaSink(inner, cache, zerolog.Nop())

	sink.AppendTurn("show me", session.BotContent{Type: "image", Content: srv.URL + "/cat.png"})

	if len(inner.turns) != 1 {
		t.Fatalf("expected one forwarded turn, got %d", len(inner.turns))
	}
	bot := inner.turns[0]
	if bot.Type != "image" {
		t.Errorf("expected image type, got %q", bot.Type)
	}
	if strings.HasPrefix(bot.Content, "http") {
		t.Errorf("expected local path, got %q", bot.Content)
	}
	if _, err := os.Stat(bot.Content); err != nil {
		t.Errorf("expected cached file at %q: %v", bot.Content, err)
	}
}

func TestMediaSinkPassesTextThrough(t *testing.T) {
	inner := &recordingSink{}
	sink := newMediaSink(inner, nil, zerolog.Nop())

	sink.AppendTurn("hi", session.BotContent{Type: "text", Content: "hello"})
	sink.AppendSystemNotice("heads up")

	if len(inner.turns) != 1 || inner.turns[0].Content != "hello" {
		t.Errorf("unexpected forwarded turns: %v", inner.turns)
	}
	if len(inner.notices) != 1 || inner.notices[0] != "heads up" {
		t.Errorf("unexpected forwarded notices: %v", inner.notices)
	}
}

func TestMediaSinkKeepsURLOnFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cache, err := media.NewCache(zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer cache.Clear()

	inner := &recordingSink{}
	sink := newMediaSink(inner, cache, zerolog.Nop())

	url := srv.URL + "/missing.png"
	sink.AppendTurn("show me", session.BotContent{Type: "image", Content: url})

	if len(inner.turns) != 1 || inner.turns[0].Content != url {
		t.Errorf("expected original URL on failure, got %v", inner.turns)
	}
}
