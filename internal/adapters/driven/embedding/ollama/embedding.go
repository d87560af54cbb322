// Package ollama embeds text with a local Ollama server's /api/embed endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/providererr"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "nomic-embed-text"
	DefaultTimeout = 60 * time.Second

	// fallbackDimensions is assumed for models missing from
	// domain.EmbeddingDimensions until the first response says otherwise.
	fallbackDimensions = 768
)

// Config selects the server and model. Zero fields take the defaults above.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// EmbeddingService is safe for concurrent use by the ingest workers.
type EmbeddingService struct {
	client  *http.Client
	baseURL string
	model   string

	// dims starts from the model table and is corrected from the first
	// response, since Ollama serves arbitrary user-pulled models.
	dims atomic.Int64
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbeddingService returns a client for cfg. No request is made until the
// first Embed or Ping.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	s := &EmbeddingService{
		client:  &http.Client{Timeout: orDuration(cfg.Timeout, DefaultTimeout)},
		baseURL: strings.TrimRight(orString(cfg.BaseURL, DefaultBaseURL), "/"),
		model:   orString(cfg.Model, DefaultModel),
	}
	dims, ok := domain.EmbeddingDimensions()[s.model]
	if !ok {
		dims = fallbackDimensions
	}
	s.dims.Store(int64(dims))
	return s
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends every text in one request. A response whose vectors
// disagree in length is rejected.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out embedResponse
	if err := s.post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &out); err != nil {
		return nil, err
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs", len(out.Embeddings), len(texts))
	}

	width := len(out.Embeddings[0])
	for i, v := range out.Embeddings {
		if len(v) != width {
			return nil, fmt.Errorf("ollama: embedding %d has %d dimensions, want %d", i, len(v), width)
		}
	}
	if width > 0 {
		s.dims.Store(int64(width))
	}
	return out.Embeddings, nil
}

func (s *EmbeddingService) Dimensions() int { return int(s.dims.Load()) }

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists the locally pulled models, which needs no model to be loaded.
func (s *EmbeddingService) Ping(ctx context.Context) error {
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

func (s *EmbeddingService) Close() error { return nil }

func (s *EmbeddingService) post(ctx context.Context, path string, body, into any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("ollama: encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ollama: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return providererr.FromResponse("ollama", resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("ollama: decoding %s response: %w", path, err)
	}
	return nil
}

func orString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
