package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iksnae/research-chat/internal"
	"github.com/iksnae/research-chat/internal/notify"
)

const (
	headerHeight = 2
	footerHeight = 4
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	toastStyles = map[notify.Level]lipgloss.Style{
		notify.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		notify.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		notify.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		notify.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
)

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.textinput.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter send · /help commands · esc quit"))
	return b.String()
}

func (m Model) headerView() string {
	sel := dimStyle.Render("[" + m.orch.Selection().String() + "]")
	cur, ok := m.store.Current()
	if !ok {
		return headerStyle.Render("No session") + "  " + sel
	}
	return internal.SessionHeader(cur) + "  " + sel
}

func (m Model) statusView() string {
	if m.busy {
		return m.spinner.View() + " " + dimStyle.Render("Waiting for the backend...")
	}
	if !m.hasStatus {
		return ""
	}
	style, ok := toastStyles[m.status.Level]
	if !ok {
		style = dimStyle
	}
	line := m.status.Title
	if m.status.Message != "" {
		line += ": " + m.status.Message
	}
	return style.Render(line)
}

// renderTranscript renders the current session, with a pending placeholder
// appended while a request is in flight
func (m Model) renderTranscript() string {
	cur, ok := m.store.Current()
	if !ok {
		if m.busy {
			return m.renderer.Message(internal.PendingMessage())
		}
		return dimStyle.Render("Type a question to start a new session.")
	}
	if m.busy {
		return m.renderer.Transcript(cur, internal.PendingMessage())
	}
	return m.renderer.Transcript(cur)
}
