package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/research-chat/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format. Assistant replies are already
// markdown and are written as-is; human text is escaped.
func (e *MarkdownExporter) Export(session *internal.Session, w io.Writer) error {
	title := session.DisplayName
	if title == "" {
		title = "Session " + session.ID
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", title)
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)
	if !session.CreatedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Created:** %s  \n", session.CreatedAt.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range session.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format(time.RFC3339))
		}

		content := msg.Text
		if msg.Speaker == internal.SpeakerHuman {
			content = escapeMarkdown(content)
		}
		if msg.Error {
			content = "> ⚠ " + strings.ReplaceAll(content, "\n", "\n> ")
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", speakerLabel(msg.Speaker), timestamp, content)

		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func speakerLabel(s internal.Speaker) string {
	switch s {
	case internal.SpeakerHuman:
		return "You"
	case internal.SpeakerAssistant:
		return "Assistant"
	}
	return string(s)
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
