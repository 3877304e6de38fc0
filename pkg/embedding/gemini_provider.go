package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "text-embedding-004"

// GeminiProvider is the only provider that honours the task type: query and
// document embeddings come from different heads.
type GeminiProvider struct {
	models *genai.Models
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey string) (EmbeddingProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{models: client.Models, model: geminiModel}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	resp, err := p.models.EmbedContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		geminiEmbedConfig(taskType),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("gemini returned an empty embedding")
	}
	return NewResponse(Normalize(resp.Embeddings[0].Values)), nil
}

func geminiEmbedConfig(taskType string) *genai.EmbedContentConfig {
	return &genai.EmbedContentConfig{
		TaskType:             taskType,
		OutputDimensionality: genai.Ptr(int32(Dimensions)),
	}
}
