package critic

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/draft"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const module = "critic"

// ErrVerificationUnparseable means the classifier answered but its output
// could not be read as a verdict.
var ErrVerificationUnparseable = errors.New("verification output unparseable")

type Verdict struct {
	IsHallucinating bool
	Explanation     string
}

// Verifier checks a draft against the exact evidence it was composed from.
// Any doubt is resolved as hallucinating.
type Verifier struct {
	classifier Classifier
	logger     logger.ILogger
	tracer     trace.Tracer
}

func NewVerifier(classifier Classifier, log logger.ILogger) *Verifier {
	return &Verifier{
		classifier: classifier,
		logger:     log,
		tracer:     otel.Tracer("axiom/critic"),
	}
}

func (v *Verifier) Verify(ctx context.Context, answer string, evidence []string) Verdict {
	ctx, span := v.tracer.Start(ctx, "critic.verify",
		trace.WithAttributes(attribute.Int("critic.evidence_count", len(evidence))))
	defer span.End()

	if len(evidence) == 0 && draft.IsAbstention(answer) {
		span.SetAttributes(attribute.Bool("critic.trivial", true))
		return Verdict{IsHallucinating: false, Explanation: "abstention without evidence asserts nothing"}
	}

	verdict, err := v.classifier.Classify(ctx, prompt.NewVerificationBuilder(answer, evidence).Build())
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, ErrVerificationUnparseable) {
			err = fmt.Errorf("%w: %v", ErrVerificationUnparseable, err)
		}
		v.logger.Warn(module, "Verification failed closed", map[string]interface{}{
			"error": err.Error(),
		})
		return Verdict{IsHallucinating: true, Explanation: err.Error()}
	}

	span.SetAttributes(attribute.Bool("critic.hallucinating", verdict.IsHallucinating))
	v.logger.Debug(module, "Verdict", map[string]interface{}{
		"is_hallucinating": verdict.IsHallucinating,
		"explanation":      verdict.Explanation,
	})
	return verdict
}
