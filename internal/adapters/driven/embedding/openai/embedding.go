// Package openai embeds text through the OpenAI embeddings API, or any server
// that speaks the same protocol when BaseURL is set.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/providererr"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultModel   = string(openai.SmallEmbedding3)
	DefaultTimeout = 60 * time.Second

	// MaxBatch is the most inputs the API accepts in one request.
	MaxBatch = 2048
)

// ErrMissingAPIKey is returned by NewEmbeddingService without a key.
var ErrMissingAPIKey = errors.New("openai: API key is required")

// Config for the service. APIKey is required; the rest have defaults.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// BatchSize caps inputs per request. Zero or values above MaxBatch mean MaxBatch.
	BatchSize int
}

// EmbeddingService wraps a go-openai client.
type EmbeddingService struct {
	client    *openai.Client
	model     string
	dims      int
	batchSize int
}

func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > MaxBatch {
		cfg.BatchSize = MaxBatch
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	dims := domain.EmbeddingDimensions()[cfg.Model]
	if dims == 0 {
		dims = domain.EmbeddingDimensions()[DefaultModel]
	}

	return &EmbeddingService{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dims:      dims,
		batchSize: cfg.BatchSize,
	}, nil
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch splits texts into requests of at most BatchSize inputs. The API
// may return data out of order, so each vector is placed by its index.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		if err := s.embedInto(ctx, texts[start:end], out[start:end]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *EmbeddingService) embedInto(ctx context.Context, texts []string, dst [][]float32) error {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return providererr.FromOpenAI(err)
	}

	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		dst[d.Index] = d.Embedding
	}
	for i := range dst {
		if len(dst[i]) == 0 {
			return fmt.Errorf("openai: no embedding returned for input %d", i)
		}
	}
	return nil
}

func (s *EmbeddingService) Dimensions() int { return s.dims }

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists models, which fails fast on a bad key.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return providererr.FromOpenAI(err)
	}
	return nil
}

func (s *EmbeddingService) Close() error { return nil }
