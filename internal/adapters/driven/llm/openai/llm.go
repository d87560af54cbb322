// Package openai talks to the Chat Completions API, or to any server that
// speaks it when BaseURL is set.
package openai

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/providererr"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultModel   = openai.GPT4oMini
	DefaultTimeout = 120 * time.Second
)

var ErrMissingAPIKey = errors.New("openai: API key is required")

type Config struct {
	APIKey  string
	BaseURL string // Azure or another compatible endpoint
	Model   string

	// Timeout bounds Chat and Ping. Streams are bounded by their context only.
	Timeout time.Duration
}

// LLMService keeps two clients because an http.Client timeout would cut a
// long stream off mid-answer.
type LLMService struct {
	client       *openai.Client
	streamClient *openai.Client
	model        string
}

func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg.Model = cmp.Or(cfg.Model, DefaultModel)
	cfg.Timeout = cmp.Or(cfg.Timeout, DefaultTimeout)

	return &LLMService{
		client:       cfg.client(cfg.Timeout),
		streamClient: cfg.client(0),
		model:        cfg.Model,
	}, nil
}

func (cfg Config) client(timeout time.Duration) *openai.Client {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	c.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(c)
}

func (s *LLMService) request(messages []driven.ChatMessage, opts driven.ChatOptions) openai.ChatCompletionRequest {
	apiMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		apiMessages[i] = openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content}
	}
	return openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    apiMessages,
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	}
}

// Chat waits for the whole reply.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, s.request(messages, opts))
	if err != nil {
		return "", providererr.FromOpenAI(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatStream streams the reply.
func (s *LLMService) ChatStream(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (driven.ChatStream, error) {
	req := s.request(messages, opts)
	req.Stream = true

	st, err := s.streamClient.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, providererr.FromOpenAI(err)
	}
	return &stream{st: st}, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which fails fast on a bad key.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return providererr.FromOpenAI(err)
	}
	return nil
}

func (s *LLMService) Close() error { return nil }

type stream struct {
	st *openai.ChatCompletionStream
}

// Recv skips chunks without content, such as the role-only first chunk.
func (s *stream) Recv() (string, error) {
	for {
		resp, err := s.st.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", providererr.FromOpenAI(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *stream) Close() error { return s.st.Close() }
