package draft

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const module = "draft"

// Sentinel opens every abstaining draft.
const Sentinel = prompt.Sentinel

// NoEvidenceAnswer is returned without a model call when retrieval found nothing.
const NoEvidenceAnswer = Sentinel + ": no direct evidence found in the vault."

// GenerationError wraps a failed or timed-out model call. It fails the
// request; the loop does not retry it.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("draft generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsAbstention reports whether text declines to answer: a single line that
// opens with the sentinel. A draft that goes on to answer below the sentinel
// line is treated as an answer.
func IsAbstention(text string) bool {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "\n") {
		return false
	}
	return strings.HasPrefix(strings.ToLower(text), Sentinel)
}

type Composer struct {
	llm    llm.LLMProvider
	logger logger.ILogger
	tracer trace.Tracer
}

func NewComposer(provider llm.LLMProvider, log logger.ILogger) *Composer {
	return &Composer{
		llm:    provider,
		logger: log,
		tracer: otel.Tracer("axiom/draft"),
	}
}

// Compose answers question strictly from evidence.
func (c *Composer) Compose(ctx context.Context, question string, evidence []string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "draft.compose",
		trace.WithAttributes(attribute.Int("draft.evidence_count", len(evidence))))
	defer span.End()

	if len(evidence) == 0 {
		c.logger.Info(module, "No evidence, returning abstention", nil)
		return NoEvidenceAnswer, nil
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.SystemDirective},
		{Role: llm.RoleUser, Content: prompt.NewCompositionBuilder(question, evidence).Build()},
	}

	start := time.Now()
	answer, err := c.llm.Chat(ctx, messages, llm.WithTemperature(0))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		c.logger.Error(module, "Draft generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", &GenerationError{Err: err}
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		// an empty reply asserts nothing, treat it as an abstention
		answer = Sentinel + ": the model returned no answer."
	}

	c.logger.Debug(module, "Draft composed", map[string]interface{}{
		"latency_ms": time.Since(start).Milliseconds(),
		"abstained":  IsAbstention(answer),
	})
	return answer, nil
}
