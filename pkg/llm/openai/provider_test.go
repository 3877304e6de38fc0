package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"
)

func TestNewProvider_RequiresKey(t *testing.T) {
	_, err := NewProvider("", "", "")
	assert.ErrorIs(t, err, ErrEmptyAPIKey)
}

func TestProvider_Chat(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"is_hallucinating\":false,\"explanation\":\"ok\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p, err := NewProvider("sk-test", srv.URL, "llama3-70b-8192")
	require.NoError(t, err)

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "grader"},
		{Role: llm.RoleUser, Content: "grade this"},
	}, llm.WithJSONMode())

	require.NoError(t, err)
	assert.JSONEq(t, `{"is_hallucinating":false,"explanation":"ok"}`, out)
	assert.Equal(t, "llama3-70b-8192", body["model"])
	format, ok := body["response_format"].(map[string]any)
	require.True(t, ok, "json mode must set response_format")
	assert.Equal(t, "json_object", format["type"])
	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
}

func TestProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	p, err := NewProvider("sk-test", srv.URL, "")
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestTemperature(t *testing.T) {
	assert.Greater(t, temperature(0), float32(0))
	assert.Equal(t, float32(2.0), temperature(5))
	assert.Equal(t, float32(0.5), temperature(0.5))
}
