package factory

import (
	"context"
	"fmt"

	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm/anthropic"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm/gemini"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm/ollama"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm/openai"
)

// ProviderConfig carries everything any backend might need; each backend
// reads only its own fields.
type ProviderConfig struct {
	Provider      string
	Model         string
	BaseURL       string
	OllamaBaseURL string
	OpenAIKey     string
	GroqKey       string
	AnthropicKey  string
	GeminiKey     string
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAIKey, cfg.BaseURL, cfg.Model)
	case "groq":
		if cfg.BaseURL != "" {
			return openai.NewProvider(cfg.GroqKey, cfg.BaseURL, cfg.Model)
		}
		return openai.NewGroqProvider(cfg.GroqKey, cfg.Model)
	case "anthropic":
		return anthropic.NewProvider(cfg.AnthropicKey, cfg.BaseURL, cfg.Model)
	case "gemini":
		return gemini.NewProvider(context.Background(), cfg.GeminiKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
