package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// capturedChat is the subset of the chat completions body the tests inspect
type capturedChat struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens      int `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

const chatReply = `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4-turbo-preview",` +
	`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"answer\":42}"}}]}`

func chatServer(t *testing.T, check func(r *http.Request, req capturedChat)) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req capturedChat
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		check(r, req)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatReply))
	}))
	t.Cleanup(server.Close)
	return server
}

func errorServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAIProvider_Generate(t *testing.T) {
	server := chatServer(t, func(r *http.Request, req capturedChat) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "gpt-4-turbo-preview", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.True(t, strings.HasPrefix(req.Messages[0].Content, "You are a business analyst."))
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Equal(t, "Idea: drones", req.Messages[1].Content)
		}
		if assert.NotNil(t, req.ResponseFormat) {
			assert.Equal(t, "json_object", req.ResponseFormat.Type)
		}
		assert.Equal(t, 2000, req.MaxTokens)
	})

	provider, err := NewOpenAIProvider(&common.OpenAIConfig{
		APIKey:    "sk-test",
		BaseURL:   server.URL + "/v1",
		MaxTokens: 2000,
	}, arbor.NewLogger())
	require.NoError(t, err)

	response, err := provider.Generate(context.Background(), "Idea: drones", interfaces.GenerateOptions{
		SystemInstruction: "You are a business analyst.",
		JSON:              true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"answer":42}`, response)
}

func TestOpenAIProvider_RateLimitStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(&common.OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL}, arbor.NewLogger())
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), "hi", interfaces.GenerateOptions{})
	require.Error(t, err)

	var apiErr *openai.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.True(t, IsRateLimitError(err))
	assert.Contains(t, err.Error(), "Rate limit reached")
	assert.Equal(t, int32(1), calls.Load(), "retries belong to the AI service, not the SDK")
}

func TestOpenAIProvider_ServerErrorIsNotRateLimit(t *testing.T) {
	server := errorServer(t, http.StatusBadRequest, `{"error":{"message":"context length exceeded","type":"invalid_request_error"}}`)

	provider, err := NewOpenAIProvider(&common.OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL}, arbor.NewLogger())
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), "hi", interfaces.GenerateOptions{})
	require.Error(t, err)
	assert.False(t, IsRateLimitError(err))
	assert.Contains(t, err.Error(), "context length exceeded")
}

func TestOpenAIProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIProvider(&common.OpenAIConfig{}, arbor.NewLogger())
	assert.ErrorIs(t, err, interfaces.ErrAIUnavailable)
}

func TestAzureProvider_Generate(t *testing.T) {
	server := chatServer(t, func(r *http.Request, req capturedChat) {
		assert.Equal(t, "/openai/deployments/gpt4o/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-15-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "az-key", r.Header.Get("api-key"))
		assert.Nil(t, req.ResponseFormat)
	})

	provider, err := NewAzureProvider(&common.AzureConfig{
		APIKey:     "az-key",
		Endpoint:   server.URL + "/",
		Deployment: "gpt4o",
	}, arbor.NewLogger())
	require.NoError(t, err)

	response, err := provider.Generate(context.Background(), "hi", interfaces.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, `{"answer":42}`, response)
}

func TestAzureProvider_RequiresDeployment(t *testing.T) {
	_, err := NewAzureProvider(&common.AzureConfig{APIKey: "k", Endpoint: "https://x"}, arbor.NewLogger())
	assert.ErrorIs(t, err, interfaces.ErrAIUnavailable)
}
