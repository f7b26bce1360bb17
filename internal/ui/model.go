// ABOUTME: Bubbletea model for the conversation transcript view
// ABOUTME: Renders finished turns, system notices, and live session state
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/voicelink/voicelink-go/internal/session"
)

// TurnMsg appends one finished exchange to the transcript.
type TurnMsg struct {
	User string
	Bot  session.BotContent
}

// NoticeMsg appends a system/error notice.
type NoticeMsg struct {
	Text string
}

// StateMsg updates the displayed session state.
type StateMsg struct {
	State session.State
}

// DeltaMsg updates the live partial-transcript line.
type DeltaMsg struct {
	Text string
}

type entry struct {
	user   string
	bot    session.BotContent
	notice string
}

// Model is the transcript TUI state.
type Model struct {
	entries []entry
	state   session.State
	delta   string

	width  int
	height int
}

// NewModel creates an empty transcript view.
func NewModel() Model {
	return Model{state: session.StateIdle}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TurnMsg:
		m.entries = append(m.entries, entry{user: msg.User, bot: msg.Bot})
		m.delta = ""

	case NoticeMsg:
		m.entries = append(m.entries, entry{notice: msg.Text})

	case StateMsg:
		m.state = msg.State

	case DeltaMsg:
		m.delta = msg.Text
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString("── Voicelink ──────────────────────────────\n")
	b.WriteString(fmt.Sprintf(" %s %s\n\n", stateIcon(m.state), m.state))

	for _, e := range m.entries {
		if e.notice != "" {
			b.WriteString(fmt.Sprintf(" [!] %s\n", e.notice))
			continue
		}
		b.WriteString(fmt.Sprintf(" You: %s\n", e.user))
		switch {
		case e.bot.Type == "image":
			b.WriteString(fmt.Sprintf(" Bot: [image] %s\n", e.bot.Content))
		case e.bot.Content == "":
			b.WriteString(" Bot: (audio reply)\n")
		default:
			b.WriteString(fmt.Sprintf(" Bot: %s\n", e.bot.Content))
		}
		b.WriteString("\n")
	}

	if m.delta != "" {
		b.WriteString(fmt.Sprintf(" … %s\n", m.delta))
	}

	b.WriteString("───────────────────────────────────────────\n")
	b.WriteString(" q: quit\n")

	return b.String()
}

func stateIcon(s session.State) string {
	switch s {
	case session.StateListening:
		return "🎤"
	case session.StateProcessing, session.StateBotGenerating:
		return "…"
	case session.StateClosed:
		return "✗"
	default:
		return "·"
	}
}

// Run starts the transcript TUI.
func Run() *tea.Program {
	return tea.NewProgram(NewModel(), tea.WithAltScreen())
}
