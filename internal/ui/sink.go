// ABOUTME: Adapts a running bubbletea program to the session sinks
// ABOUTME: Forwards turns, notices, state, and deltas as tea messages
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/voicelink/voicelink-go/internal/session"
)

// ProgramSink feeds session output into the TUI. It implements both
// session.TranscriptSink and session.Observer.
type ProgramSink struct {
	prog *tea.Program
}

// NewProgramSink wraps a started program.
func NewProgramSink(prog *tea.Program) *ProgramSink {
	return &ProgramSink{prog: prog}
}

func (s *ProgramSink) AppendTurn(user string, bot session.BotContent) {
	s.prog.Send(TurnMsg{User: user, Bot: bot})
}

func (s *ProgramSink) AppendSystemNotice(text string) {
	s.prog.Send(NoticeMsg{Text: text})
}

func (s *ProgramSink) StateChanged(state session.State) {
	s.prog.Send(StateMsg{State: state})
}

func (s *ProgramSink) DeltaUpdated(text string) {
	s.prog.Send(DeltaMsg{Text: text})
}
