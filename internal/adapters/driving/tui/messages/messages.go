// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewDocuments is the per-course document library.
	ViewDocuments
)

// String returns the string representation.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// CoursesLoaded carries the indexed courses.
type CoursesLoaded struct {
	Courses []string
	Err     error
}

// CourseSelected is sent when the course selector changes.
type CourseSelected struct {
	Course string
}

// AnswerStarted carries the event stream of a question that is being answered.
type AnswerStarted struct {
	Question string
	Events   <-chan domain.AnswerEvent
}

// AnswerEventReceived carries one event read from Events.
type AnswerEventReceived struct {
	Events <-chan domain.AnswerEvent
	Event  domain.AnswerEvent
}

// AnswerStreamClosed is sent when Events closes.
type AnswerStreamClosed struct {
	Events <-chan domain.AnswerEvent
}

// SessionReset is sent after the conversation has been cleared.
type SessionReset struct{}

// DocumentsLoaded carries the documents of one course.
type DocumentsLoaded struct {
	CourseID  string
	Documents []domain.DocumentSummary
	Err       error
}

// DocumentDeleted reports the outcome of a document removal.
type DocumentDeleted struct {
	CourseID   string
	SourceFile string
	Removed    bool
	Err        error
}

// ErrorOccurred is sent when an operation fails outside a view-specific message.
type ErrorOccurred struct {
	Err error
}
