// Package providererr classifies failures returned by AI provider APIs.
package providererr

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// maxBody bounds how much of an error body is quoted in messages.
const maxBody = 512

// FromStatus builds an error for a non-2xx provider response.
// 429 wraps domain.ErrRateLimited so callers can back off and retry.
func FromStatus(provider string, status int, body string) error {
	body = strings.TrimSpace(body)
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s returned status %d: %s", domain.ErrRateLimited, provider, status, body)
	}
	return fmt.Errorf("%s: API returned status %d: %s", provider, status, body)
}

// FromResponse reads resp.Body and calls FromStatus.
func FromResponse(provider string, resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return fmt.Errorf("%s: API returned status %d (failed to read body: %w)", provider, resp.StatusCode, err)
	}
	return FromStatus(provider, resp.StatusCode, string(body))
}

// FromOpenAI maps go-openai client errors onto the same classification.
// Errors that carry no HTTP status are returned wrapped but otherwise intact.
func FromOpenAI(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return FromStatus("openai", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return FromStatus("openai", reqErr.HTTPStatusCode, string(reqErr.Body))
	}
	return fmt.Errorf("openai: %w", err)
}

// IsRateLimited reports whether err is a provider rate-limit response.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
