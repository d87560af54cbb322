package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewLLMService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)
	return s
}

func messages() []driven.ChatMessage {
	return []driven.ChatMessage{
		{Role: domain.RoleSystem, Content: "be grounded"},
		{Role: domain.RoleUser, Content: "hi"},
	}
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestChat(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be grounded", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, 300, req.MaxTokens)
		assert.False(t, req.Stream)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hello "},{"type":"text","text":"there"}]}`))
	})

	out, err := s.Chat(context.Background(), messages(), driven.ChatOptions{MaxTokens: 300, Temperature: 0.1})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)
}

func TestChat_RateLimited(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow"}}`))
	})

	_, err := s.Chat(context.Background(), messages(), driven.ChatOptions{})
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

func sse(events ...string) string {
	var b strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&b, "event: x\ndata: %s\n\n", ev)
	}
	return b.String()
}

func drain(t *testing.T, st driven.ChatStream) (string, error) {
	t.Helper()
	defer st.Close()
	var out strings.Builder
	for {
		delta, err := st.Recv()
		if errors.Is(err, io.EOF) {
			return out.String(), nil
		}
		if err != nil {
			return out.String(), err
		}
		out.WriteString(delta)
	}
}

func TestChatStream(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(sse(
			`{"type":"message_start"}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Quick"}}`,
			`{"type":"ping"}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"sort"}}`,
			`{"type":"message_stop"}`,
		)))
	})

	st, err := s.ChatStream(context.Background(), messages(), driven.ChatOptions{})
	require.NoError(t, err)
	out, err := drain(t, st)
	require.NoError(t, err)
	assert.Equal(t, "Quicksort", out)
}

func TestChatStream_ErrorEvent(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sse(
			`{"type":"content_block_delta","delta":{"type":"text_delta","text":"partial"}}`,
			`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
		)))
	})

	st, err := s.ChatStream(context.Background(), messages(), driven.ChatOptions{})
	require.NoError(t, err)
	out, err := drain(t, st)
	assert.Equal(t, "partial", out)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestChatStream_BadStatus(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	_, err := s.ChatStream(context.Background(), messages(), driven.ChatOptions{})
	assert.ErrorContains(t, err, "status 401")
}

func TestPing(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	assert.NoError(t, s.Ping(context.Background()))
	assert.Equal(t, DefaultModel, s.ModelName())
}

func TestNewLLMService_MissingKeyError(t *testing.T) {
	_, err := NewLLMService(Config{BaseURL: "http://localhost"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		delta string
		done  bool
		err   bool
	}{
		{"event name line", "event: content_block_delta", "", false, false},
		{"text delta", `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"hi"}}`, "hi", false, false},
		{"json delta skipped", `data: {"type":"content_block_delta","delta":{"type":"input_json_delta"}}`, "", false, false},
		{"stop", `data: {"type":"message_stop"}`, "", true, false},
		{"api error", `data: {"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`, "", true, true},
		{"garbage", `data: {`, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, done, err := decodeEvent([]byte(tt.line))
			assert.Equal(t, tt.delta, delta)
			assert.Equal(t, tt.done, done)
			assert.Equal(t, tt.err, err != nil)
		})
	}
}
