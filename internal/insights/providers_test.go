// ABOUTME: Tests for the GLM and Qwen providers against fake HTTP servers.
// ABOUTME: Verifies request shape, response extraction, and error surfaces.
package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicProviderGenerate(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "glm-4.7",
			"content": [{"type": "text", "text": "Keep going!"}],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 10, "output_tokens": 3}
		}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", "", server.URL, server.Client())
	text, err := p.Generate(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "Keep going!", text)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, DefaultGLMModel, gotBody["model"])
	assert.EqualValues(t, glmMaxTokens, gotBody["max_tokens"])

	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
}

func TestAnthropicProviderDropsEnvAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-user-secret")

	var gotAuth, gotAPIKey string
	var sawAPIKey bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("X-Api-Key")
		_, sawAPIKey = r.Header["X-Api-Key"]

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_03","type":"message","role":"assistant","model":"glm-4.7","content":[{"type":"text","text":"ok"}],"usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("glm-key", "", server.URL, server.Client())
	_, err := p.Generate(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "Bearer glm-key", gotAuth)
	assert.False(t, sawAPIKey, "unexpected X-Api-Key header %q", gotAPIKey)
}

func TestAnthropicProviderEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_02","type":"message","role":"assistant","model":"glm-4.7","content":[],"usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("k", "", server.URL, server.Client())
	text, err := p.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, NoInsightsText, text)
}

func TestAnthropicProviderErrorStatus(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("k", "", server.URL, server.Client())
	_, err := p.Generate(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "provider must not retry")
}

func TestDashScopeProviderGenerate(t *testing.T) {
	var gotAuth string
	var gotBody dashScopeRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"output":{"text":"Nice streak."},"request_id":"abc"}`))
	}))
	defer server.Close()

	p := NewDashScopeProvider("qwen-key", "", server.URL, server.Client())
	text, err := p.Generate(context.Background(), "prompt body")
	require.NoError(t, err)

	assert.Equal(t, "Nice streak.", text)
	assert.Equal(t, "Bearer qwen-key", gotAuth)
	assert.Equal(t, DefaultQwenModel, gotBody.Model)
	assert.Equal(t, "message", gotBody.Parameters.ResultFormat)
	require.Len(t, gotBody.Input.Messages, 2)
	assert.Equal(t, "system", gotBody.Input.Messages[0].Role)
	assert.Equal(t, SystemPrompt, gotBody.Input.Messages[0].Content)
	assert.Equal(t, "user", gotBody.Input.Messages[1].Role)
	assert.Equal(t, "prompt body", gotBody.Input.Messages[1].Content)
}

func TestDashScopeProviderChoicesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"From choices."}}]}}`))
	}))
	defer server.Close()

	p := NewDashScopeProvider("k", "qwen-max", server.URL, server.Client())
	text, err := p.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "From choices.", text)
	assert.Equal(t, "qwen-max", p.Model())
}

func TestDashScopeProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"code":"InternalError"}`},
		{"unauthorized", http.StatusUnauthorized, `{"code":"InvalidApiKey"}`},
		{"malformed json", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewDashScopeProvider("k", "", server.URL, server.Client())
			_, err := p.Generate(context.Background(), "prompt")
			assert.Error(t, err)
		})
	}
}

func TestDashScopeProviderTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	p := NewDashScopeProvider("k", "", url, nil)
	_, err := p.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}
