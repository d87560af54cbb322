package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// NoDocumentsMessage is the reply given while the index is empty.
const NoDocumentsMessage = "📚 No documents have been uploaded yet. Please upload some course materials with 'coursemate upload' to get started."

// AssistantService answers questions within a caller-owned session.
type AssistantService struct {
	index     *CourseIndex
	generator *Generator
}

// NewAssistantService creates a new assistant service.
func NewAssistantService(index *CourseIndex, generator *Generator) *AssistantService {
	return &AssistantService{index: index, generator: generator}
}

// NewSession creates a fresh session with a random ID.
func (s *AssistantService) NewSession() *domain.Session {
	return domain.NewSession(uuid.NewString())
}

// Available returns nil when questions can be answered.
func (s *AssistantService) Available() error {
	return s.generator.Available()
}

// Ask answers a question and records the turn in the session.
// While the index is empty the reply is NoDocumentsMessage and the model is
// never called.
func (s *AssistantService) Ask(
	ctx context.Context, session *domain.Session, question string, opts driving.AskOptions,
) (*domain.AnswerResult, error) {
	question, err := validateQuestion(question)
	if err != nil {
		return nil, err
	}

	if s.indexEmpty(ctx) {
		session.Append(domain.RoleUser, question)
		session.Append(domain.RoleAssistant, NoDocumentsMessage)
		return &domain.AnswerResult{Answer: NoDocumentsMessage, Sources: []domain.Citation{}}, nil
	}

	logger.Debug("Asking in %s", describeSession(session))
	res, err := s.generator.Ask(ctx, domain.AnswerRequest{
		Question:       question,
		CourseSelector: session.SelectedCourse(),
		DocType:        opts.DocType,
		History:        session.Messages(),
	})
	if err != nil {
		return nil, err
	}

	session.Append(domain.RoleUser, question)
	session.Append(domain.RoleAssistant, res.Answer)
	return res, nil
}

// AskStream answers a question as an event stream. The turn is recorded
// when the terminal event arrives, before it is handed to the caller.
func (s *AssistantService) AskStream(
	ctx context.Context, session *domain.Session, question string, opts driving.AskOptions,
) (<-chan domain.AnswerEvent, error) {
	question, err := validateQuestion(question)
	if err != nil {
		return nil, err
	}

	if s.indexEmpty(ctx) {
		session.Append(domain.RoleUser, question)
		session.Append(domain.RoleAssistant, NoDocumentsMessage)
		return cannedStream(ctx, NoDocumentsMessage), nil
	}

	logger.Debug("Streaming in %s", describeSession(session))
	events, err := s.generator.Stream(ctx, domain.AnswerRequest{
		Question:       question,
		CourseSelector: session.SelectedCourse(),
		DocType:        opts.DocType,
		History:        session.Messages(),
	})
	if err != nil {
		return nil, err
	}

	out := make(chan domain.AnswerEvent)
	go func() {
		defer close(out)
		for ev := range events {
			if ev.Kind.IsTerminal() {
				session.Append(domain.RoleUser, question)
				session.Append(domain.RoleAssistant, ev.Answer)
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				// Drain so the generator can finish.
				for range events {
				}
				return
			}
		}
	}()
	return out, nil
}

// CheckRelevance reports whether any document clears the similarity threshold.
func (s *AssistantService) CheckRelevance(ctx context.Context, question, courseSelector string) (*domain.RelevanceReport, error) {
	question, err := validateQuestion(question)
	if err != nil {
		return nil, err
	}
	return s.generator.CheckRelevance(ctx, question, courseSelector), nil
}

func (s *AssistantService) indexEmpty(ctx context.Context) bool {
	empty, err := s.index.IsEmpty(ctx)
	if err != nil {
		logger.Warn("Checking for documents failed: %v", err)
		return false
	}
	return empty
}

// cannedStream replays a fixed reply through the stream protocol.
func cannedStream(ctx context.Context, text string) <-chan domain.AnswerEvent {
	out := make(chan domain.AnswerEvent)
	go func() {
		defer close(out)
		events := []domain.AnswerEvent{
			{Kind: domain.EventSourcesReady, Sources: []domain.Citation{}},
			{Kind: domain.EventTextDelta, Text: text},
			{Kind: domain.EventDone, Sources: []domain.Citation{}, Done: true, Answer: text},
		}
		for _, ev := range events {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// describeSession formats a session for debug logs.
func describeSession(s *domain.Session) string {
	return fmt.Sprintf("session %s (course %s, %d messages)", s.ID(), s.SelectedCourse(), s.Len())
}
