// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-analysis/internal/prompt"
	"github.com/pdiddy/paper-analysis/pkg/types"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

func newClient(url string) *OpenAIClient {
	return NewOpenAIClient(types.AIConfig{
		Model:     "gpt-test",
		APIKey:    "sk-test",
		BaseURL:   url + "/v1",
		UserAgent: "paper-analysis/test",
	})
}

func TestCompleteSendsRequest(t *testing.T) {
	var (
		got       chatRequest
		path      string
		auth      string
		userAgent string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		userAgent = r.Header.Get("User-Agent")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-test-0001",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "1. 目的\n2. 方法"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 45, "total_tokens": 165}
		}`))
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).Complete(context.Background(), "分析这篇论文")
	require.NoError(t, err)

	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "paper-analysis/test", userAgent)

	assert.Equal(t, "gpt-test", got.Model)
	assert.InDelta(t, 0.3, got.Temperature, 1e-6)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, prompt.Persona, got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "分析这篇论文", got.Messages[1].Content)

	assert.Equal(t, "1. 目的\n2. 方法", res.Content)
	assert.Equal(t, "gpt-test-0001", res.Model)
	assert.Equal(t, 120, res.PromptTokens)
	assert.Equal(t, 45, res.CompletionTokens)
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`,
		},
		{
			name:   "quota exceeded",
			status: http.StatusTooManyRequests,
			body:   `{"error": {"message": "You exceeded your current quota", "type": "insufficient_quota", "code": "insufficient_quota"}}`,
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"id": "chatcmpl-2", "object": "chat.completion", "model": "gpt-test", "choices": []}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Complete(context.Background(), "text")
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrRemoteService)
			assert.Equal(t, 1, calls, "requests are never retried")
		})
	}
}

func TestCompleteKeepsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Complete(context.Background(), "text")
	require.Error(t, err)

	var apiErr *openai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestCompleteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newClient(url).Complete(context.Background(), "text")
	assert.ErrorIs(t, err, types.ErrRemoteService)
}

func TestCompleteCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(srv.URL).Complete(ctx, "text")
	assert.ErrorIs(t, err, types.ErrRemoteService)
	assert.ErrorIs(t, err, context.Canceled)
}
