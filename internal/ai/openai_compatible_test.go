package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatibleClient_Complete(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello there"}},{"message":{"content":"ignored"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(ChatConfig{
		BaseURL:         srv.URL + "/v1/",
		APIKey:          "sk-test",
		Model:           "gemini-2.5-flash",
		ReasoningEffort: "low",
	})

	out, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "Hello"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)
	assert.Equal(t, "gemini-2.5-flash", captured["model"])
	assert.Equal(t, "low", captured["reasoning_effort"])
	assert.Equal(t, false, captured["stream"])
}

func TestOpenAICompatibleClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "upstream error status", status: http.StatusTooManyRequests, body: `{"error":"quota"}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "bad json", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewOpenAICompatibleClient(ChatConfig{BaseURL: srv.URL, Model: "m"})
			_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "x"}})
			assert.Error(t, err)
		})
	}
}

func TestOpenAICompatibleClient_RequiresConfig(t *testing.T) {
	_, err := NewOpenAICompatibleClient(ChatConfig{}).Complete(context.Background(), nil)
	assert.Error(t, err)
}
