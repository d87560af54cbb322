package providererr

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		rateLimit  bool
		wantSubstr string
	}{
		{"rate limited", http.StatusTooManyRequests, "slow down", true, "ollama returned status 429: slow down"},
		{"unauthorised", http.StatusUnauthorized, "bad key", false, "ollama: API returned status 401: bad key"},
		{"server error", http.StatusInternalServerError, "", false, "status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus("ollama", tt.status, tt.body)
			assert.Equal(t, tt.rateLimit, IsRateLimited(err))
			assert.Contains(t, err.Error(), tt.wantSubstr)
		})
	}
}

func TestFromStatus_TruncatesBody(t *testing.T) {
	err := FromStatus("anthropic", 400, strings.Repeat("x", 2000))
	assert.Less(t, len(err.Error()), 600)
	assert.True(t, strings.HasSuffix(err.Error(), "..."))
}

func TestFromResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Body:       io.NopCloser(strings.NewReader("quota")),
	}
	err := FromResponse("anthropic", resp)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

func TestFromOpenAI(t *testing.T) {
	assert.NoError(t, FromOpenAI(nil))

	err := FromOpenAI(&openai.APIError{HTTPStatusCode: 429, Message: "rate limit"})
	assert.True(t, IsRateLimited(err))

	err = FromOpenAI(&openai.RequestError{HTTPStatusCode: 503, Body: []byte("down")})
	assert.False(t, IsRateLimited(err))
	assert.Contains(t, err.Error(), "503")

	cause := errors.New("dial tcp: refused")
	err = FromOpenAI(cause)
	assert.True(t, errors.Is(err, cause))
}
