package internal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	humanLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Bold(true)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Renderer formats transcripts for the terminal. Assistant replies are
// rendered as markdown; if the markdown renderer is unavailable they are
// printed as plain text.
type Renderer struct {
	md    *glamour.TermRenderer
	width int
}

// NewRenderer creates a renderer wrapping text at width columns
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = 80
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		LogDebug("Markdown renderer unavailable: %v", err)
		md = nil
	}
	return &Renderer{md: md, width: width}
}

// NewPlainRenderer creates a renderer that never interprets markdown
func NewPlainRenderer() *Renderer {
	return &Renderer{width: 80}
}

// Width returns the wrap width
func (r *Renderer) Width() int {
	return r.width
}

// Markdown renders text as markdown, falling back to the text itself
func (r *Renderer) Markdown(text string) string {
	if r.md == nil {
		return text
	}
	out, err := r.md.Render(text)
	if err != nil {
		LogDebug("Markdown rendering failed: %v", err)
		return text
	}
	return strings.TrimRight(out, "\n")
}

// Message formats a single transcript entry
func (r *Renderer) Message(m Message) string {
	var b strings.Builder

	label := humanLabelStyle.Render("You")
	if m.Speaker == SpeakerAssistant {
		label = assistantLabelStyle.Render("Assistant")
	}
	b.WriteString(label)
	if !m.Timestamp.IsZero() {
		b.WriteString(" ")
		b.WriteString(timestampStyle.Render(m.Timestamp.Local().Format("15:04")))
	}
	b.WriteString("\n")

	switch {
	case m.Pending:
		b.WriteString(pendingStyle.Render(m.Text))
	case m.Error:
		b.WriteString(errorTextStyle.Render("✗ " + m.Text))
	case m.Speaker == SpeakerAssistant:
		b.WriteString(r.Markdown(m.Text))
	default:
		b.WriteString(m.Text)
	}
	return b.String()
}

// Transcript formats every message of a session, optionally followed by
// extra display-only messages such as a pending placeholder
func (r *Renderer) Transcript(s Session, extra ...Message) string {
	msgs := append(append([]Message{}, s.Messages...), extra...)
	if len(msgs) == 0 {
		return pendingStyle.Render("No messages yet.")
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, r.Message(m))
	}
	return strings.Join(parts, "\n\n")
}

// SessionHeader is the one-line summary shown above a transcript
func SessionHeader(s Session) string {
	return fmt.Sprintf("%s  %s", progressStyle.Render(s.DisplayName),
		timestampStyle.Render(fmt.Sprintf("%s · %d messages", s.ID, len(s.Messages))))
}
