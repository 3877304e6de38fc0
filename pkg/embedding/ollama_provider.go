package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Eatosin/lexpertz-axiom-engine/pkg/httpjson"
)

// OllamaProvider embeds with a local Ollama model. nomic-embed-text has a
// single mode, so the task type is ignored.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *httpjson.Client
}

func NewOllamaProvider(baseURL string, model string) EmbeddingProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  httpjson.New("ollama embeddings", &http.Client{}),
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	var out ollamaEmbeddingResponse
	err := p.client.Post(ctx, p.baseURL+"/api/embeddings", ollamaEmbeddingRequest{
		Model:  p.model,
		Prompt: text,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding for model %s", p.model)
	}

	values := make([]float32, len(out.Embedding))
	for i, v := range out.Embedding {
		values[i] = float32(v)
	}
	return NewResponse(Normalize(values)), nil
}
