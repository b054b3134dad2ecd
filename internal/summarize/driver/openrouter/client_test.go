package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublens/sublens/internal/summarize/driver"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "SubLens", r.Header.Get("X-Title"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "test/model:free", payload["model"])
		messages, ok := payload["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		first := messages[0].(map[string]any)
		assert.Equal(t, "system", first["role"])
		assert.Equal(t, "system prompt", first["content"])
		second := messages[1].(map[string]any)
		assert.Equal(t, "user", second["role"])
		assert.Equal(t, "user text", second["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "test/model:free",
			"choices": [{"message": {"content": "summary text"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	resp, err := client.Complete(context.Background(), &driver.Request{
		Model:  "test/model:free",
		System: "system prompt",
		User:   "user text",
	})
	require.NoError(t, err)

	assert.Equal(t, "summary text", resp.Text)
	assert.Equal(t, "test/model:free", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestCompleteOmitsSystemMessageWhenEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		messages := payload["messages"].([]any)
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]any)["role"])

		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.Complete(context.Background(), &driver.Request{Model: "m", User: "hi"})
	require.NoError(t, err)
}

func TestCompleteProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.Complete(context.Background(), &driver.Request{Model: "m", User: "hi"})
	require.Error(t, err)

	var perr *driver.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "openrouter", perr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	assert.Contains(t, perr.Message, "rate limited")
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Complete(context.Background(), &driver.Request{Model: "m", User: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestCompleteValidatesRequest(t *testing.T) {
	client := NewClient("", "key")

	_, err := client.Complete(context.Background(), nil)
	require.Error(t, err)

	_, err = client.Complete(context.Background(), &driver.Request{User: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is required")

	_, err = client.Complete(context.Background(), &driver.Request{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user message is required")
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.Complete(context.Background(), &driver.Request{Model: "m", User: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response choices")
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("", " key ")
	assert.Equal(t, defaultBaseURL, client.BaseURL)
	assert.Equal(t, "key", client.APIKey)
	assert.NotEmpty(t, client.Referer)
	assert.NotEmpty(t, client.Title)
}
