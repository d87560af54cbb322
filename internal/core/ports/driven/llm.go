package driven

import "context"

// ChatMessage is one turn sent to the model. Role is domain.RoleSystem,
// domain.RoleUser or domain.RoleAssistant.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a single completion. A zero MaxTokens lets the adapter
// pick its own cap.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}

// LLMService writes answers from a prompt built around retrieved chunks.
// Ollama, OpenAI and Anthropic each have an adapter. The service is optional:
// with none configured the assistant refuses to answer but uploads still work.
type LLMService interface {
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ChatStream starts a streamed completion. Callers must Close the stream
	// even after Recv returns io.EOF.
	ChatStream(ctx context.Context, messages []ChatMessage, opts ChatOptions) (ChatStream, error)

	ModelName() string

	// Ping makes the cheapest authenticated request the provider offers.
	Ping(ctx context.Context) error
	Close() error
}

// ChatStream hands out the text of a streamed reply piece by piece.
type ChatStream interface {
	// Recv blocks for the next delta and returns io.EOF once the reply ends.
	Recv() (string, error)
	Close() error
}
