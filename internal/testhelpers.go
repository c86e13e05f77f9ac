package internal

import (
	"time"
)

// CreateTestSession creates a test session with a short exchange
func CreateTestSession(id string) Session {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return Session{
		ID:          id,
		DisplayName: "Test Conversation",
		CreatedAt:   at,
		Messages: []Message{
			HumanMessage("What is retrieval augmented generation?", at.Add(time.Minute)),
			AssistantMessage("It combines a retriever with a **generator**.", at.Add(2*time.Minute)),
		},
	}
}

// CreateTestSessionWithMessages creates a test session with custom messages
func CreateTestSessionWithMessages(id string, messages []Message) Session {
	return Session{
		ID:          id,
		DisplayName: "Test Conversation",
		CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Messages:    messages,
	}
}
