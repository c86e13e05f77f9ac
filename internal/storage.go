package internal

import (
	"encoding/json"
	"time"
)

// Slot keys used in the durable key/value slot
const (
	SessionsKey = "chat-sessions"
	CurrentKey  = "chat-current"
)

// Slot is a durable key/value location surviving process restarts
type Slot interface {
	Read(key string) (value string, ok bool, err error)
	Write(key, value string) error
}

// Persistence serializes the session collection to a durable slot. It is the
// only code aware of the persisted layout. Loads fail soft and saves are best
// effort: problems are logged, never returned.
type Persistence struct {
	slot Slot
}

// NewPersistence creates a persistence adapter over a slot
func NewPersistence(slot Slot) *Persistence {
	return &Persistence{slot: slot}
}

// sessionRecord is the persisted shape of a Session. Unknown fields are
// ignored and absent ones default to zero values.
type sessionRecord struct {
	SessionID string          `json:"session_id"`
	Name      string          `json:"name"`
	CreatedAt string          `json:"createdAt"`
	Messages  []messageRecord `json:"messages"`
}

type messageRecord struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	IsError   bool   `json:"isError,omitempty"`
}

// Load returns the persisted sessions, newest first. Absent or malformed data
// yields an empty slice.
func (p *Persistence) Load() []Session {
	raw, ok, err := p.slot.Read(SessionsKey)
	if err != nil {
		LogWarn("Failed to load sessions: %v", err)
		return []Session{}
	}
	if !ok || raw == "" {
		return []Session{}
	}

	var records []sessionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		LogWarn("%v", &ParseError{Source: "slot", Key: SessionsKey, Err: err})
		return []Session{}
	}

	sessions := make([]Session, 0, len(records))
	for _, rec := range records {
		if rec.SessionID == "" {
			LogDebug("Skipping persisted session without id")
			continue
		}
		sessions = append(sessions, reviveSession(rec))
	}
	return sessions
}

// Save writes the sessions to the slot
func (p *Persistence) Save(sessions []Session) {
	records := make([]sessionRecord, 0, len(sessions))
	for _, s := range sessions {
		records = append(records, flattenSession(s))
	}

	data, err := json.Marshal(records)
	if err != nil {
		LogError("Failed to encode sessions: %v", err)
		return
	}
	if err := p.slot.Write(SessionsKey, string(data)); err != nil {
		LogError("Failed to save sessions: %v", err)
	}
}

// LoadCurrent returns the persisted current-session id, or "".
func (p *Persistence) LoadCurrent() string {
	id, ok, err := p.slot.Read(CurrentKey)
	if err != nil {
		LogWarn("Failed to load current session: %v", err)
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

// SaveCurrent persists the current-session id ("" for none)
func (p *Persistence) SaveCurrent(id string) {
	if err := p.slot.Write(CurrentKey, id); err != nil {
		LogError("Failed to save current session: %v", err)
	}
}

func reviveSession(rec sessionRecord) Session {
	s := Session{
		ID:          rec.SessionID,
		DisplayName: rec.Name,
		CreatedAt:   reviveTime(rec.CreatedAt),
		Messages:    make([]Message, 0, len(rec.Messages)),
	}
	for _, m := range rec.Messages {
		s.Messages = append(s.Messages, Message{
			Speaker:   reviveSpeaker(m.Role),
			Text:      m.Content,
			Timestamp: reviveTime(m.Timestamp),
			Error:     m.IsError,
		})
	}
	return s
}

func flattenSession(s Session) sessionRecord {
	rec := sessionRecord{
		SessionID: s.ID,
		Name:      s.DisplayName,
		CreatedAt: flattenTime(s.CreatedAt),
		Messages:  make([]messageRecord, 0, len(s.Messages)),
	}
	for _, m := range s.Messages {
		if m.Pending {
			continue
		}
		rec.Messages = append(rec.Messages, messageRecord{
			Role:      flattenSpeaker(m.Speaker),
			Content:   m.Text,
			Timestamp: flattenTime(m.Timestamp),
			IsError:   m.Error,
		})
	}
	return rec
}

// reviveSpeaker accepts the legacy "ai"/"user" role names
func reviveSpeaker(role string) Speaker {
	switch role {
	case "ai", string(SpeakerAssistant):
		return SpeakerAssistant
	case "user", string(SpeakerHuman):
		return SpeakerHuman
	}
	return Speaker(role)
}

// flattenSpeaker writes assistant messages under the "ai" role the web client
// reads
func flattenSpeaker(s Speaker) string {
	if s == SpeakerAssistant {
		return "ai"
	}
	return string(s)
}

func reviveTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		LogDebug("Unparseable timestamp %q: %v", s, err)
		return time.Time{}
	}
	return t
}

func flattenTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
