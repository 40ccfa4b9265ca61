package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a session transcript.
type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Session holds one conversation's transcript. History is presentation
// state only: answering never reads it, so clearing a session changes
// nothing about retrieval.
type Session struct {
	ID string

	mu       sync.Mutex
	messages []Message
}

func (s *Session) Append(role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{Role: role, Content: content, At: time.Now()})
}

// History returns a copy of the transcript in order.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Sessions tracks per-connection conversation state explicitly instead
// of ambient globals.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session)}
}

// Get returns the session with the given ID, creating it (with a fresh
// uuid when id is empty) if it does not exist yet.
func (m *Sessions) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	s, ok := m.sessions[id]
	if !ok {
		s = &Session{ID: id}
		m.sessions[id] = s
	}
	return s
}

// Drop removes a session entirely.
func (m *Sessions) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
