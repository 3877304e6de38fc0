// Package openai adapts OpenAI-compatible chat completion APIs (OpenAI, Groq)
// to llm.LLMProvider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"
)

const (
	DefaultModel   = "gpt-4o-mini"
	GroqBaseURL    = "https://api.groq.com/openai/v1"
	GroqModel      = "llama3-70b-8192"
	requestTimeout = 120 * time.Second
)

var ErrEmptyAPIKey = errors.New("openai: API key cannot be empty")

type Provider struct {
	client *goopenai.Client
	model  string
}

var _ llm.LLMProvider = (*Provider)(nil)

// NewProvider builds a client against baseURL, or the public OpenAI endpoint
// when baseURL is empty.
func NewProvider(apiKey, baseURL, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}

	return &Provider{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// NewGroqProvider targets Groq's OpenAI-compatible endpoint.
func NewGroqProvider(apiKey, model string) (*Provider, error) {
	if model == "" {
		model = GroqModel
	}
	return NewProvider(apiKey, GroqBaseURL, model)
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0, Model: p.model}, opts...)

	req := goopenai.ChatCompletionRequest{
		Model:       options.Model,
		Messages:    toMessages(history),
		Temperature: temperature(options.Temperature),
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}
	if options.JSONMode {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", p.handleError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func toMessages(history []llm.Message) []goopenai.ChatCompletionMessage {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		role := goopenai.ChatMessageRoleUser
		switch msg.Role {
		case llm.RoleSystem:
			role = goopenai.ChatMessageRoleSystem
		case llm.RoleAssistant, "model":
			role = goopenai.ChatMessageRoleAssistant
		}
		messages = append(messages, goopenai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	return messages
}

// temperature works around the omitempty tag on the request field: a literal
// zero would be dropped and the API default (1.0) used instead.
func temperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(math.Min(t, 2.0))
}

func (p *Provider) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai: status %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	return fmt.Errorf("openai: request failed: %w", err)
}
