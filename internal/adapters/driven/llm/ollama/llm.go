// Package ollama answers questions with a chat model served by Ollama.
package ollama

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/llm/linestream"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/providererr"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig selects the server and model. Timeout bounds Chat and Ping;
// streams run until their context ends.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type LLMService struct {
	baseURL string
	model   string

	client       *http.Client
	streamClient *http.Client
}

type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

// chatResponse is the whole reply, or one line of a stream.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		baseURL:      strings.TrimRight(cmp.Or(cfg.BaseURL, DefaultBaseURL), "/"),
		model:        cmp.Or(cfg.Model, DefaultLLMModel),
		client:       &http.Client{Timeout: cfg.Timeout},
		streamClient: &http.Client{},
	}
}

func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	resp, err := s.post(ctx, s.client, s.request(messages, opts, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: decoding reply: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	return out.Message.Content, nil
}

func (s *LLMService) ChatStream(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (driven.ChatStream, error) {
	resp, err := s.post(ctx, s.streamClient, s.request(messages, opts, true))
	if err != nil {
		return nil, err
	}
	return linestream.New(resp.Body, decodeLine), nil
}

func decodeLine(line []byte) (string, bool, error) {
	var chunk chatResponse
	if err := json.Unmarshal(line, &chunk); err != nil {
		return "", false, fmt.Errorf("ollama: decoding stream line: %w", err)
	}
	if chunk.Error != "" {
		return "", true, fmt.Errorf("ollama stream error: %s", chunk.Error)
	}
	return chunk.Message.Content, chunk.Done, nil
}

func (s *LLMService) request(messages []driven.ChatMessage, opts driven.ChatOptions, stream bool) chatRequest {
	req := chatRequest{
		Model:    s.model,
		Messages: make([]chatMessage, 0, len(messages)),
		Stream:   stream,
		Options:  &options{NumPredict: opts.MaxTokens, Temperature: opts.Temperature},
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage(m))
	}
	return req
}

// post sends body to /api/chat. Any status but 200 is turned into a
// providererr error and the body is closed.
func (s *LLMService) post(ctx context.Context, client *http.Client, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ollama: encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: chat request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, providererr.FromResponse("ollama", resp)
	}
	return resp, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists local models via /api/tags.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: building ping: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return providererr.FromResponse("ollama", resp)
	}
	return nil
}

func (s *LLMService) Close() error { return nil }
