package domain

import "sync"

// Message roles accepted in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Session holds the conversation state of one user. It is created by the
// presentation layer, passed into every question, and cleared on explicit
// reset. Safe for concurrent use.
type Session struct {
	id string

	mu       sync.Mutex
	selected string
	history  []Message
}

// NewSession creates an empty session with the AUTO course selector.
func NewSession(id string) *Session {
	return &Session{id: id, selected: AutoCourseID}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SelectedCourse returns the current course selector.
func (s *Session) SelectedCourse() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SelectCourse sets the course selector. Blank input selects AUTO.
func (s *Session) SelectCourse(selector string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if IsAutoSelector(selector) {
		s.selected = AutoCourseID
		return
	}
	s.selected = SanitizeCourseID(selector)
}

// Append records a turn.
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Message{Role: role, Content: content})
}

// Messages returns a copy of the conversation, oldest first.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of recorded messages.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Reset clears the history and returns the selector to AUTO.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.selected = AutoCourseID
}
