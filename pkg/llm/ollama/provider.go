package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/pkg/httpjson"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"
)

// OllamaProvider talks to /api/chat with streaming off. Local models can
// take a while on a cold load, hence the long client timeout.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *httpjson.Client
}

var _ llm.LLMProvider = (*OllamaProvider)(nil)

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   modelName,
		client:  httpjson.New("ollama", &http.Client{Timeout: 120 * time.Second}),
	}
}

func (o *OllamaProvider) BaseURL() string {
	return o.baseURL
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func toOllamaMessages(history []llm.Message) []ollamaMessage {
	out := make([]ollamaMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		out[i] = ollamaMessage{Role: role, Content: msg.Content}
	}
	return out
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0}, opts...)

	req := ollamaChatRequest{
		Model:    o.model,
		Messages: toOllamaMessages(history),
		Options: ollamaOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	}
	if options.Model != "" {
		req.Model = options.Model
	}
	if options.JSONMode {
		req.Format = "json"
	}

	var resp ollamaChatResponse
	if err := o.client.Post(ctx, o.baseURL+"/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
