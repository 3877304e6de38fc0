package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"

	"google.golang.org/genai"

	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"
)

const DefaultModel = "gemini-1.5-flash"

var ErrEmptyAPIKey = errors.New("gemini: API key cannot be empty")

type Provider struct {
	models *genai.Models
	model  string
}

var _ llm.LLMProvider = (*Provider)(nil)

func NewProvider(ctx context.Context, apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Provider{models: client.Models, model: model}, nil
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0, Model: p.model}, opts...)
	system, turns := llm.SplitSystem(history)

	resp, err := p.models.GenerateContent(ctx, options.Model, toContents(turns), generationConfig(system, options))
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	return resp.Text(), nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func toContents(turns []llm.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, msg := range turns {
		role := genai.Role(genai.RoleUser)
		if msg.Role == llm.RoleAssistant || msg.Role == "model" {
			role = genai.Role(genai.RoleModel)
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

func generationConfig(system string, options llm.Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(math.Min(math.Max(options.Temperature, 0), 2))),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if options.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(min(options.MaxTokens, math.MaxInt32))
	}
	if options.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}
