package jina

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Eatosin/lexpertz-axiom-engine/pkg/embedding"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/httpjson"
)

const (
	defaultEndpoint = "https://api.jina.ai/v1/embeddings"
	// jina-embeddings-v2-base-en is 768 wide, same as embedding.Dimensions.
	defaultModel = "jina-embeddings-v2-base-en"
)

type JinaProvider struct {
	endpoint string
	model    string
	client   *httpjson.Client
}

var _ embedding.EmbeddingProvider = (*JinaProvider)(nil)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewJinaProvider(apiKey string) *JinaProvider {
	return newProvider(apiKey, defaultEndpoint)
}

func newProvider(apiKey, endpoint string) *JinaProvider {
	client := httpjson.New("jina embeddings", &http.Client{})
	client.Headers["Authorization"] = "Bearer " + apiKey
	return &JinaProvider{
		endpoint: endpoint,
		model:    defaultModel,
		client:   client,
	}
}

func (p *JinaProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	var out embeddingResponse
	if err := p.client.Post(ctx, p.endpoint, embeddingRequest{Model: p.model, Input: []string{text}}, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("jina embeddings: %s", out.Error.Message)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("jina embeddings: empty result")
	}
	return embedding.NewResponse(embedding.Normalize(out.Data[0].Embedding)), nil
}
