package driving

import (
	"context"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// AskOptions narrows a question.
type AskOptions struct {
	// DocType restricts retrieval to one document type. Empty means any.
	DocType domain.DocType
}

// AssistantService answers questions grounded in the uploaded documents.
// Conversation state lives in the caller-owned Session.
type AssistantService interface {
	// NewSession creates a fresh session with the AUTO course selector.
	NewSession() *domain.Session

	// Available returns nil when questions can be answered, or an error
	// wrapping ErrLLMUnavailable with a setup hint.
	Available() error

	// Ask answers a question within the session and records the turn.
	Ask(ctx context.Context, session *domain.Session, question string, opts AskOptions) (*domain.AnswerResult, error)

	// AskStream answers a question as a stream of events and records the turn
	// once the stream completes.
	AskStream(ctx context.Context, session *domain.Session, question string, opts AskOptions) (<-chan domain.AnswerEvent, error)

	// CheckRelevance reports whether any document scores above the
	// similarity threshold for the question.
	CheckRelevance(ctx context.Context, question, courseSelector string) (*domain.RelevanceReport, error)
}
