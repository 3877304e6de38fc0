package anthropic

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

func TestChat_SendsSystemAndTurns(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-sonnet-20241022",
			"content": [{"type": "text", "text": "{\"is_hallucinating\": false, \"explanation\": \"supported\"}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	p, err := NewProvider("test-key", srv.URL, "")
	require.NoError(t, err)

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an auditor."},
		{Role: llm.RoleUser, Content: "check this"},
	}, llm.WithJSONMode())
	require.NoError(t, err)
	assert.Contains(t, out, `"is_hallucinating": false`)

	assert.Equal(t, DefaultModel, got["model"])
	system, ok := got["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	text := system[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "You are an auditor.")
	assert.Contains(t, text, "single JSON object")

	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
}

func TestChat_EmptyContentIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_2","type":"message","role":"assistant","model":"m","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer srv.Close()

	p, err := NewProvider("test-key", srv.URL, "m")
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "hello")
	assert.EqualError(t, err, "anthropic: empty response")
}
