// Package anthropic answers questions with Claude through the Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/llm/linestream"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/providererr"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	defaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
)

// ErrMissingAPIKey is returned by NewLLMService without a key.
var ErrMissingAPIKey = errors.New("anthropic: API key is required")

// Config for the Messages API. Timeout bounds Chat and Ping; streams run
// until their context ends.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type LLMService struct {
	baseURL string
	apiKey  string
	model   string

	client       *http.Client
	streamClient *http.Client
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// overloaded reports whether the error should be retried later.
func (e *apiError) overloaded() bool {
	return e.Type == "rate_limit_error" || e.Type == "overloaded_error"
}

type textBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []textBlock `json:"content"`
	Error   *apiError   `json:"error,omitempty"`
}

// streamEvent is the data payload of one server-sent event.
type streamEvent struct {
	Type  string    `json:"type"`
	Delta textBlock `json:"delta"`
	Error *apiError `json:"error,omitempty"`
}

func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &LLMService{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		client:       &http.Client{Timeout: cfg.Timeout},
		streamClient: &http.Client{},
	}, nil
}

// Chat joins the text blocks of the reply.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	resp, err := s.post(ctx, s.client, s.request(messages, opts, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("anthropic: decoding reply: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", out.Error.Message)
	}

	var text strings.Builder
	for _, b := range out.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("anthropic: reply had no text")
	}
	return text.String(), nil
}

func (s *LLMService) ChatStream(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (driven.ChatStream, error) {
	resp, err := s.post(ctx, s.streamClient, s.request(messages, opts, true))
	if err != nil {
		return nil, err
	}
	return linestream.New(resp.Body, decodeEvent), nil
}

// decodeEvent reads the data lines of the event stream and ignores the
// event and comment lines around them.
func decodeEvent(line []byte) (string, bool, error) {
	data, ok := bytes.CutPrefix(line, []byte("data:"))
	if !ok {
		return "", false, nil
	}
	var ev streamEvent
	if err := json.Unmarshal(bytes.TrimSpace(data), &ev); err != nil {
		return "", false, fmt.Errorf("anthropic: decoding stream event: %w", err)
	}

	switch ev.Type {
	case "content_block_delta":
		if ev.Delta.Type == "text_delta" {
			return ev.Delta.Text, false, nil
		}
	case "message_stop":
		return "", true, nil
	case "error":
		if ev.Error == nil {
			return "", true, errors.New("anthropic stream error: unknown error")
		}
		if ev.Error.overloaded() {
			return "", true, fmt.Errorf("%w: anthropic: %s", domain.ErrRateLimited, ev.Error.Message)
		}
		return "", true, fmt.Errorf("anthropic stream error: %s", ev.Error.Message)
	}
	return "", false, nil
}

// request moves system messages into the top-level system field, which is
// where the Messages API expects them.
func (s *LLMService) request(messages []driven.ChatMessage, opts driven.ChatOptions, stream bool) messagesRequest {
	req := messagesRequest{
		Model:     s.model,
		Messages:  make([]message, 0, len(messages)),
		MaxTokens: opts.MaxTokens,
		Stream:    stream,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	temperature := opts.Temperature
	req.Temperature = &temperature

	var system []string
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		req.Messages = append(req.Messages, message(m))
	}
	req.System = strings.Join(system, "\n\n")
	return req
}

func (s *LLMService) post(ctx context.Context, client *http.Client, body messagesRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("anthropic: building request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	if body.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: messages request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, providererr.FromResponse("anthropic", resp)
	}
	return resp, nil
}

func (s *LLMService) authorize(req *http.Request) {
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: building ping: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return providererr.FromResponse("anthropic", resp)
	}
	return nil
}

func (s *LLMService) Close() error { return nil }
