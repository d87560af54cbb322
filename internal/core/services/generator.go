package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
)

// StreamErrorPrefix starts the visible marker appended to a failed stream.
const StreamErrorPrefix = "\n\n⚠️ Error generating response: "

// NoRelevantDocumentsMessage explains an empty relevance check.
const NoRelevantDocumentsMessage = "No documents found matching your query."

// terminalSendGrace bounds how long a terminal event waits for a consumer
// after the request context is gone.
const terminalSendGrace = time.Second

// builtinGroundedPrompt is used when no prompt store is configured or it fails.
const builtinGroundedPrompt = `You are a Course Assistant for students. Answer STRICTLY from the course document context below.

- Only use information from the context for course-specific facts.
- Cite every fact as [Source: filename, Page X].
- If the context does not contain the answer, say: "I don't have information about that in the uploaded course documents."
- Never invent names, dates, deadlines or policies.
- General explanations of concepts are fine; cite the document that discusses them.
- Be clear, organised and student-friendly.

## Current Context from Course Documents:
{context}`

// errNoLLM is returned when asking is disabled.
var errNoLLM = fmt.Errorf("%w: configure one with 'coursemate settings llm'", domain.ErrLLMUnavailable)

// Generator produces grounded answers from retrieved context.
type Generator struct {
	retriever     *Retriever
	llm           driven.LLMService
	prompts       driven.PromptStore
	chat          driven.ChatOptions
	historyTurns  int
	timeout       time.Duration
	streamTimeout time.Duration
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithPromptStore loads the system prompt template from store.
func WithPromptStore(store driven.PromptStore) GeneratorOption {
	return func(g *Generator) { g.prompts = store }
}

// WithChatOptions sets temperature and the answer token cap.
func WithChatOptions(temperature float64, maxTokens int) GeneratorOption {
	return func(g *Generator) {
		g.chat.Temperature = temperature
		if maxTokens > 0 {
			g.chat.MaxTokens = maxTokens
		}
	}
}

// WithHistoryTurns sets how many conversation turns are sent to the model.
func WithHistoryTurns(n int) GeneratorOption {
	return func(g *Generator) {
		if n >= 0 {
			g.historyTurns = n
		}
	}
}

// WithGenerationTimeouts bounds one-shot and streamed generation.
func WithGenerationTimeouts(oneShot, stream time.Duration) GeneratorOption {
	return func(g *Generator) {
		if oneShot > 0 {
			g.timeout = oneShot
		}
		if stream > 0 {
			g.streamTimeout = stream
		}
	}
}

// NewGenerator creates a generator. llm may be nil, which disables answering.
func NewGenerator(retriever *Retriever, llm driven.LLMService, opts ...GeneratorOption) *Generator {
	g := &Generator{
		retriever: retriever,
		llm:       llm,
		chat: driven.ChatOptions{
			Temperature: domain.DefaultTemperature,
			MaxTokens:   domain.DefaultMaxTokens,
		},
		historyTurns:  domain.DefaultHistoryTurns,
		timeout:       domain.DefaultProviderTimeout,
		streamTimeout: domain.DefaultStreamTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Available returns nil when an LLM is configured.
func (g *Generator) Available() error {
	if g.llm == nil {
		return errNoLLM
	}
	return nil
}

// Ask answers a question in one call.
func (g *Generator) Ask(ctx context.Context, req domain.AnswerRequest) (*domain.AnswerResult, error) {
	question, err := validateQuestion(req.Question)
	if err != nil {
		return nil, err
	}
	if err := g.Available(); err != nil {
		return nil, err
	}

	scope, chunks := g.retriever.RetrieveScoped(ctx, question, req.CourseSelector, WithDocType(req.DocType))
	messages := g.buildMessages(FormatContext(chunks), req.History, question)

	start := time.Now()
	chatCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	answer, err := g.llm.Chat(chatCtx, messages, g.chat)
	if err != nil {
		logger.Error("Error generating response: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	logger.Timing("Answer generation", start)

	return &domain.AnswerResult{
		Answer:     answer,
		Sources:    Citations(chunks),
		Evidence:   chunks,
		NumSources: len(chunks),
		Scope:      scope,
	}, nil
}

// Stream answers a question as a pull-based event stream. Validation and
// availability errors are returned before any event. The channel is
// unbuffered and closed after exactly one terminal event.
func (g *Generator) Stream(ctx context.Context, req domain.AnswerRequest) (<-chan domain.AnswerEvent, error) {
	question, err := validateQuestion(req.Question)
	if err != nil {
		return nil, err
	}
	if err := g.Available(); err != nil {
		return nil, err
	}

	scope, chunks := g.retriever.RetrieveScoped(ctx, question, req.CourseSelector, WithDocType(req.DocType))
	messages := g.buildMessages(FormatContext(chunks), req.History, question)

	out := make(chan domain.AnswerEvent)
	go g.stream(ctx, out, messages, scope, chunks)
	return out, nil
}

func (g *Generator) stream(
	ctx context.Context,
	out chan<- domain.AnswerEvent,
	messages []driven.ChatMessage,
	scope string,
	chunks []domain.Chunk,
) {
	defer close(out)

	sources := Citations(chunks)
	var answer strings.Builder

	fail := func(err error) {
		logger.Error("Error in streaming response: %v", err)
		marker := StreamErrorPrefix + err.Error()
		answer.WriteString(marker)
		ev := domain.AnswerEvent{
			Kind:       domain.EventError,
			Text:       marker,
			Sources:    sources,
			Evidence:   chunks,
			NumSources: len(chunks),
			Done:       true,
			Answer:     answer.String(),
			Err:        fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err),
		}
		select {
		case out <- ev:
		case <-time.After(terminalSendGrace):
		}
	}

	send := func(ev domain.AnswerEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			fail(ctx.Err())
			return false
		}
	}

	if !send(domain.AnswerEvent{
		Kind:       domain.EventSourcesReady,
		Sources:    sources,
		Evidence:   chunks,
		NumSources: len(chunks),
		Scope:      scope,
	}) {
		return
	}

	streamCtx, cancel := context.WithTimeout(ctx, g.streamTimeout)
	defer cancel()

	st, err := g.llm.ChatStream(streamCtx, messages, g.chat)
	if err != nil {
		fail(err)
		return
	}
	defer st.Close()

	for {
		delta, err := st.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fail(err)
			return
		}
		if delta == "" {
			continue
		}
		answer.WriteString(delta)
		if !send(domain.AnswerEvent{Kind: domain.EventTextDelta, Text: delta}) {
			return
		}
	}

	send(domain.AnswerEvent{
		Kind:       domain.EventDone,
		Sources:    sources,
		Evidence:   chunks,
		NumSources: len(chunks),
		Done:       true,
		Answer:     answer.String(),
	})
}

// CheckRelevance reports whether any chunk clears the similarity threshold.
func (g *Generator) CheckRelevance(ctx context.Context, question, selector string) *domain.RelevanceReport {
	results := g.retriever.RetrieveWithScores(ctx, question, selector)
	if len(results) == 0 {
		return &domain.RelevanceReport{Message: NoRelevantDocumentsMessage}
	}
	return &domain.RelevanceReport{
		HasRelevantDocs: true,
		NumRelevant:     len(results),
		TopScore:        results[0].Score,
	}
}

// buildMessages assembles system prompt, bounded history and the question.
func (g *Generator) buildMessages(docContext string, history []domain.Message, question string) []driven.ChatMessage {
	messages := make([]driven.ChatMessage, 0, 2+len(history))
	messages = append(messages, driven.ChatMessage{
		Role:    domain.RoleSystem,
		Content: renderPrompt(g.promptTemplate(), docContext),
	})
	for _, m := range RecentHistory(history, g.historyTurns) {
		messages = append(messages, driven.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: question})
}

func (g *Generator) promptTemplate() string {
	if g.prompts == nil {
		return builtinGroundedPrompt
	}
	tmpl, err := g.prompts.Load(driven.PromptGroundedSystem)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		logger.Warn("Using built-in prompt: %v", err)
		return builtinGroundedPrompt
	}
	return tmpl
}

// renderPrompt embeds context at the placeholder, or appends it when the
// template has none.
func renderPrompt(tmpl, docContext string) string {
	if strings.Contains(tmpl, driven.ContextPlaceholder) {
		return strings.ReplaceAll(tmpl, driven.ContextPlaceholder, docContext)
	}
	return tmpl + "\n\n" + docContext
}

// RecentHistory keeps the last turns*2 messages, then drops every role other
// than user and assistant.
func RecentHistory(history []domain.Message, turns int) []domain.Message {
	if limit := turns * 2; len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]domain.Message, 0, len(history))
	for _, m := range history {
		if m.Role == domain.RoleUser || m.Role == domain.RoleAssistant {
			out = append(out, m)
		}
	}
	return out
}

func validateQuestion(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", fmt.Errorf("%w: question cannot be empty", domain.ErrInvalidInput)
	}
	return q, nil
}
