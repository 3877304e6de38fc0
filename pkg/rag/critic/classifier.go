package critic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"

	"github.com/go-playground/validator/v10"
)

// Classifier is the binary grading capability the verifier depends on.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (Verdict, error)
}

// llmVerdict is the JSON shape requested from the model. IsHallucinating is a
// pointer so a missing field fails validation instead of defaulting to false.
type llmVerdict struct {
	IsHallucinating *bool  `json:"is_hallucinating" validate:"required"`
	Explanation     string `json:"explanation" validate:"required,min=1"`
}

// LLMClassifier grades drafts with a chat model in JSON mode.
type LLMClassifier struct {
	llm       llm.LLMProvider
	validator *validator.Validate
}

var _ Classifier = (*LLMClassifier)(nil)

func NewLLMClassifier(provider llm.LLMProvider) *LLMClassifier {
	return &LLMClassifier{
		llm:       provider,
		validator: validator.New(),
	}
}

func (c *LLMClassifier) Classify(ctx context.Context, prompt string) (Verdict, error) {
	raw, err := c.llm.Generate(ctx, prompt, llm.WithTemperature(0), llm.WithJSONMode())
	if err != nil {
		return Verdict{}, fmt.Errorf("classifier call failed: %w", err)
	}

	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return Verdict{}, fmt.Errorf("%w: no JSON object in response", ErrVerificationUnparseable)
	}

	var v llmVerdict
	if err := json.Unmarshal([]byte(jsonStr), &v); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrVerificationUnparseable, err)
	}
	if err := c.validator.Struct(v); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrVerificationUnparseable, err)
	}

	return Verdict{
		IsHallucinating: *v.IsHallucinating,
		Explanation:     strings.TrimSpace(v.Explanation),
	}, nil
}

// extractJSON pulls the first JSON object out of a model reply, accepting
// ```json fences, bare fences, or prose around the object.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if start := strings.Index(response, "```"); start != -1 {
		body := response[start+3:]
		if nl := strings.Index(body, "\n"); nl != -1 && !strings.HasPrefix(strings.TrimSpace(body[:nl]), "{") {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end != -1 {
			candidate := strings.TrimSpace(body[:end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case ch == '{' && !inString:
			depth++
		case ch == '}' && !inString:
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}
