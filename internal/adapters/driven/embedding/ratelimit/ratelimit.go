// Package ratelimit wraps an embedding service with a token bucket and
// retries provider rate-limit responses with jittered exponential backoff.
package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/providererr"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default retry behaviour.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 500 * time.Millisecond
	maxBackoff        = 30 * time.Second
)

// Config holds limiter configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero or negative disables the bucket.
	RequestsPerSecond float64

	// Burst is the maximum burst size (minimum 1).
	Burst int

	// MaxRetries is the number of retries after a rate-limit response.
	MaxRetries int

	// BaseDelay is the first backoff delay.
	BaseDelay time.Duration
}

// EmbeddingService decorates another embedding service.
type EmbeddingService struct {
	next       driven.EmbeddingService
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// New wraps next with rate limiting.
func New(next driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &EmbeddingService{
		next:       next,
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		sleep:      sleepCtx,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.do(ctx, func() error {
		var err error
		out, err = s.next.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.do(ctx, func() error {
		var err error
		out, err = s.next.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.next.Dimensions() }

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping is not rate limited.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error { return s.next.Close() }

func (s *EmbeddingService) do(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			delay := Backoff(s.baseDelay, attempt)
			logger.Debug("embedding rate limited, retry %d in %s", attempt, delay)
			if serr := s.sleep(ctx, delay); serr != nil {
				return serr
			}
		}
		if werr := s.limiter.Wait(ctx); werr != nil {
			return fmt.Errorf("rate limiter: %w", werr)
		}

		err = call()
		if err == nil || !providererr.IsRateLimited(err) {
			return err
		}
	}
	return err
}

// Backoff returns 2^attempt * base capped at 30s with +/-25% jitter.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := base * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2+1)) - backoff/4
	return backoff + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
