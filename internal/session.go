package internal

import "time"

// Speaker identifies who authored a message
type Speaker string

const (
	SpeakerHuman     Speaker = "human"
	SpeakerAssistant Speaker = "assistant"
)

// Session is one chat conversation with a stable identity and an ordered transcript
type Session struct {
	ID          string    `json:"id" yaml:"id"`
	DisplayName string    `json:"name" yaml:"name"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Messages    []Message `json:"messages" yaml:"messages"`
}

// Message is a single transcript entry. Messages are immutable once appended.
type Message struct {
	Speaker   Speaker   `json:"speaker" yaml:"speaker"`
	Text      string    `json:"text" yaml:"text"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Error     bool      `json:"error,omitempty" yaml:"error,omitempty"`

	// Pending marks a display-only "working" placeholder. Pending messages are
	// never appended to a session.
	Pending bool `json:"-" yaml:"-"`
}

// HumanMessage builds a message authored by the user
func HumanMessage(text string, at time.Time) Message {
	return Message{Speaker: SpeakerHuman, Text: text, Timestamp: at}
}

// AssistantMessage builds a message authored by the assistant
func AssistantMessage(text string, at time.Time) Message {
	return Message{Speaker: SpeakerAssistant, Text: text, Timestamp: at}
}

// ErrorMessage builds an assistant message flagged as a failure
func ErrorMessage(text string, at time.Time) Message {
	return Message{Speaker: SpeakerAssistant, Text: text, Timestamp: at, Error: true}
}

// PendingMessage builds the transient placeholder shown while a request is in flight
func PendingMessage() Message {
	return Message{Speaker: SpeakerAssistant, Text: "Working...", Pending: true}
}

func (s Session) clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}
