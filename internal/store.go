package internal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Capacity is the maximum number of sessions kept in the collection
const Capacity = 10

// SessionPersister is the durable side of the store
type SessionPersister interface {
	Load() []Session
	Save(sessions []Session)
	LoadCurrent() string
	SaveCurrent(id string)
}

// Store owns the session collection and the current-session pointer. Sessions
// live in an arena keyed by id; order holds their ids newest first. All reads
// return copies, so callers never hold a writable reference to session data.
type Store struct {
	mu        sync.RWMutex
	persister SessionPersister
	sessions  map[string]*Session
	order     []string
	current   string
	loaded    bool

	now   func() time.Time
	newID func() string
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithClock overrides the time source
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides local session id allocation
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates an empty store. Call Initialize to load persisted state.
func NewStore(persister SessionPersister, opts ...StoreOption) *Store {
	if persister == nil {
		persister = nopPersister{}
	}
	s := &Store{
		persister: persister,
		sessions:  make(map[string]*Session),
		now:       time.Now,
		newID:     func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the persisted collection once, replacing the in-memory one.
// Later calls are no-ops.
func (s *Store) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	s.loaded = true

	s.sessions = make(map[string]*Session)
	s.order = s.order[:0]
	for _, sess := range s.persister.Load() {
		if _, dup := s.sessions[sess.ID]; dup {
			LogWarn("Ignoring duplicate persisted session %s", sess.ID)
			continue
		}
		if len(s.order) == Capacity {
			LogWarn("Persisted collection exceeds %d sessions, dropping the oldest", Capacity)
			break
		}
		c := sess.clone()
		s.sessions[c.ID] = &c
		s.order = append(s.order, c.ID)
	}

	s.current = ""
	if id := s.persister.LoadCurrent(); id != "" {
		if _, ok := s.sessions[id]; ok {
			s.current = id
		}
	}
	LogDebug("Loaded %d session(s), current=%q", len(s.order), s.current)
}

// Shutdown flushes the collection to the persister
func (s *Store) Shutdown() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.persister.Save(s.snapshotLocked())
	s.persister.SaveCurrent(s.current)
}

// CreateOption configures CreateSession
type CreateOption func(*createOptions)

type createOptions struct {
	id          string
	makeCurrent bool
}

// WithSessionID uses an id assigned elsewhere, typically by the backend
func WithSessionID(id string) CreateOption {
	return func(o *createOptions) { o.id = id }
}

// MakeCurrent points the current-session pointer at the new session
func MakeCurrent() CreateOption {
	return func(o *createOptions) { o.makeCurrent = true }
}

// CreateSession inserts a new session at the front of the collection, evicting
// the oldest session when the collection is full. A blank name gets a label
// derived from the creation time. If the id already exists, the existing
// session is returned untouched.
func (s *Store) CreateSession(name string, opts ...CreateOption) Session {
	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := o.id
	if id == "" {
		id = s.newID()
	}
	if existing, ok := s.sessions[id]; ok {
		LogWarn("Session %s already exists, not recreating it", id)
		if o.makeCurrent {
			s.setCurrentLocked(id)
		}
		return existing.clone()
	}

	createdAt := s.now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultSessionName(createdAt)
	}
	sess := &Session{
		ID:          id,
		DisplayName: name,
		CreatedAt:   createdAt,
		Messages:    []Message{},
	}

	if len(s.order) >= Capacity {
		s.evictOldestLocked()
	}
	s.sessions[id] = sess
	s.order = append([]string{id}, s.order...)

	if o.makeCurrent {
		s.current = id
		s.persister.SaveCurrent(id)
	}
	s.persister.Save(s.snapshotLocked())
	return sess.clone()
}

// DefaultSessionName is the label given to sessions created without a name
func DefaultSessionName(createdAt time.Time) string {
	return "Chat - " + createdAt.Format("Jan 2, 2006 15:04:05")
}

func (s *Store) evictOldestLocked() {
	last := len(s.order) - 1
	evicted := s.order[last]
	s.order = s.order[:last]
	delete(s.sessions, evicted)
	LogInfo("Evicted oldest session %s", evicted)
	if s.current == evicted {
		s.current = ""
		s.persister.SaveCurrent("")
	}
}

// SetCurrent points the current-session pointer at id. An empty or unknown id
// clears the pointer. It reports whether the pointer now references a session.
func (s *Store) SetCurrent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCurrentLocked(id)
}

func (s *Store) setCurrentLocked(id string) bool {
	if _, ok := s.sessions[id]; !ok {
		id = ""
	}
	if s.current != id {
		s.current = id
		s.persister.SaveCurrent(id)
	}
	return id != ""
}

// AppendMessage adds msg to the end of a session's transcript. Unknown session
// ids are ignored: replies may arrive after their session was deleted.
// Pending placeholders are never stored.
func (s *Store) AppendMessage(sessionID string, msg Message) {
	if msg.Pending {
		LogDebug("Not storing pending placeholder for session %s", sessionID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		LogDebug("Dropping message for unknown session %s", sessionID)
		return
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	sess.Messages = append(sess.Messages, msg)
	s.persister.Save(s.snapshotLocked())
}

// RenameSession replaces a session's display name. Blank names are rejected.
func (s *Store) RenameSession(id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	renamed := sess.clone()
	renamed.DisplayName = name
	s.sessions[id] = &renamed
	s.persister.Save(s.snapshotLocked())
	return true
}

// DeleteSession removes a session. Deleting an unknown id is a no-op.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.current == id {
		s.current = ""
		s.persister.SaveCurrent("")
	}
	s.persister.Save(s.snapshotLocked())
}

// Sessions returns a copy of the collection, newest first
func (s *Store) Sessions() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Current returns the current session, if any
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == "" {
		return Session{}, false
	}
	return s.sessions[s.current].clone(), true
}

// CurrentID returns the current session id, or ""
func (s *Store) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Get returns the session with the given id
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return sess.clone(), true
}

// Has reports whether id is in the collection
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// Len returns the number of sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Resolve finds a session by full id or unique id prefix
func (s *Store) Resolve(ref string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[ref]; ok {
		return sess.clone(), nil
	}
	var match *Session
	for _, id := range s.order {
		if ref != "" && strings.HasPrefix(id, ref) {
			if match != nil {
				return Session{}, fmt.Errorf("ambiguous session id prefix %q", ref)
			}
			match = s.sessions[id]
		}
	}
	if match == nil {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, ref)
	}
	return match.clone(), nil
}

func (s *Store) snapshotLocked() []Session {
	out := make([]Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.sessions[id].clone())
	}
	return out
}

type nopPersister struct{}

func (nopPersister) Load() []Session     { return nil }
func (nopPersister) Save([]Session)      {}
func (nopPersister) LoadCurrent() string { return "" }
func (nopPersister) SaveCurrent(string)  {}
