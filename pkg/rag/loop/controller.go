package loop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/critic"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/draft"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	module = "loop"

	DefaultMaxAttempts    = 3
	DefaultRetrievalLimit = 4
)

var (
	ErrMissingTenant = errors.New("tenant id is required")
	ErrEmptyQuestion = errors.New("question is required")

	// ErrRetryBudgetExhausted is logged when the loop gives up; callers see
	// an unverified Result instead.
	ErrRetryBudgetExhausted = errors.New("verification retry budget exhausted")
)

type Retriever interface {
	Retrieve(ctx context.Context, question, tenantID string, limit int) []string
}

type Composer interface {
	Compose(ctx context.Context, question string, evidence []string) (string, error)
}

type Verifier interface {
	Verify(ctx context.Context, answer string, evidence []string) critic.Verdict
}

type Config struct {
	MaxAttempts      int
	RetrievalLimit   int
	RetrievalTimeout time.Duration
	DraftTimeout     time.Duration
	VerifyTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:      DefaultMaxAttempts,
		RetrievalLimit:   DefaultRetrievalLimit,
		RetrievalTimeout: 10 * time.Second,
		DraftTimeout:     60 * time.Second,
		VerifyTimeout:    60 * time.Second,
	}
}

type Option func(*Controller)

func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// Controller drives THINKING -> RETRIEVING -> DRAFTING -> VERIFYING and either
// stops at VERIFIED or goes back to RETRIEVING, at most MaxAttempts times.
// It keeps no per-request state and may be shared across goroutines.
type Controller struct {
	retriever Retriever
	composer  Composer
	verifier  Verifier
	config    Config
	logger    logger.ILogger
	metrics   *Metrics
	tracer    trace.Tracer
}

func NewController(retriever Retriever, composer Composer, verifier Verifier, cfg Config, log logger.ILogger, opts ...Option) *Controller {
	defaults := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.RetrievalLimit <= 0 {
		cfg.RetrievalLimit = defaults.RetrievalLimit
	}
	if cfg.RetrievalTimeout <= 0 {
		cfg.RetrievalTimeout = defaults.RetrievalTimeout
	}
	if cfg.DraftTimeout <= 0 {
		cfg.DraftTimeout = defaults.DraftTimeout
	}
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = defaults.VerifyTimeout
	}

	c := &Controller{
		retriever: retriever,
		composer:  composer,
		verifier:  verifier,
		config:    cfg,
		logger:    log,
		tracer:    otel.Tracer("axiom/loop"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run answers question for tenantID. The only error outcomes are invalid
// input, a cancelled context and *draft.GenerationError; everything else ends
// in a Result.
func (c *Controller) Run(ctx context.Context, question, tenantID string) (*Result, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrMissingTenant
	}
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	ctx, span := c.tracer.Start(ctx, "loop.run",
		trace.WithAttributes(attribute.Int("loop.max_attempts", c.config.MaxAttempts)))
	defer span.End()

	mem := newWorkingMemory(question, tenantID)
	c.transition(mem, StatusRetrieving)

	for mem.Attempts < c.config.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mem.Attempts++

		c.retrieve(ctx, mem)
		c.transition(mem, StatusDrafting)

		if err := c.draft(ctx, mem); err != nil {
			span.RecordError(err)
			return nil, err
		}
		c.transition(mem, StatusVerifying)

		c.verify(ctx, mem)
		if mem.accepted() {
			c.transition(mem, StatusVerified)
			result := c.finish(mem)
			span.SetAttributes(attribute.String("loop.status", string(result.Status)))
			return result, nil
		}

		c.logger.Info(module, "Draft rejected, retrying retrieval", map[string]interface{}{
			"attempt":     mem.Attempts,
			"explanation": mem.lastExplanation,
		})
		c.transition(mem, StatusRetrieving)
	}

	result := c.exhausted(mem)
	span.SetAttributes(attribute.String("loop.status", string(result.Status)))
	return result, nil
}

func (c *Controller) transition(mem *WorkingMemory, next Status) {
	c.logger.Debug(module, "State transition", map[string]interface{}{
		"from":    string(mem.Status),
		"to":      string(next),
		"attempt": mem.Attempts,
	})
	mem.Status = next
}

func (c *Controller) retrieve(ctx context.Context, mem *WorkingMemory) {
	stageCtx, cancel := context.WithTimeout(ctx, c.config.RetrievalTimeout)
	defer cancel()

	start := time.Now()
	evidence := c.retriever.Retrieve(stageCtx, mem.Question, mem.TenantID, c.config.RetrievalLimit)
	c.metrics.observeStage(StatusRetrieving, time.Since(start))

	if evidence == nil {
		evidence = []string{}
	}
	// replace, never append
	mem.Evidence = evidence
}

func (c *Controller) draft(ctx context.Context, mem *WorkingMemory) error {
	stageCtx, cancel := context.WithTimeout(ctx, c.config.DraftTimeout)
	defer cancel()

	start := time.Now()
	answer, err := c.composer.Compose(stageCtx, mem.Question, mem.Evidence)
	c.metrics.observeStage(StatusDrafting, time.Since(start))
	if err != nil {
		var genErr *draft.GenerationError
		if !errors.As(err, &genErr) {
			err = &draft.GenerationError{Err: err}
		}
		c.logger.Error(module, "Drafting failed, aborting request", map[string]interface{}{
			"attempt": mem.Attempts,
			"error":   err.Error(),
		})
		c.metrics.observeOutcome("error", mem.Attempts)
		return err
	}

	mem.Draft = answer
	return nil
}

func (c *Controller) verify(ctx context.Context, mem *WorkingMemory) {
	stageCtx, cancel := context.WithTimeout(ctx, c.config.VerifyTimeout)
	defer cancel()

	start := time.Now()
	verdict := c.verifier.Verify(stageCtx, mem.Draft, mem.Evidence)
	c.metrics.observeStage(StatusVerifying, time.Since(start))

	mem.lastExplanation = verdict.Explanation
	if verdict.IsHallucinating {
		mem.VerificationScore = scoreRejected
		return
	}
	mem.VerificationScore = scoreAccepted
}

func (c *Controller) finish(mem *WorkingMemory) *Result {
	status := StatusVerified
	if draft.IsAbstention(mem.Draft) {
		status = StatusInsufficientEvidence
	}

	c.logger.Info(module, "Verification loop finished", map[string]interface{}{
		"status":         string(status),
		"attempts":       mem.Attempts,
		"evidence_count": len(mem.Evidence),
	})
	c.metrics.observeOutcome(status, mem.Attempts)

	return &Result{
		Answer:        mem.Draft,
		Status:        status,
		EvidenceCount: len(mem.Evidence),
		Attempts:      mem.Attempts,
	}
}

func (c *Controller) exhausted(mem *WorkingMemory) *Result {
	c.logger.Warn(module, ErrRetryBudgetExhausted.Error(), map[string]interface{}{
		"attempts":         mem.Attempts,
		"last_explanation": mem.lastExplanation,
	})
	c.metrics.observeOutcome(StatusUnverified, mem.Attempts)

	return &Result{
		Answer:        annotateUnverified(mem.Draft, mem.Attempts, mem.lastExplanation),
		Status:        StatusUnverified,
		EvidenceCount: len(mem.Evidence),
		Attempts:      mem.Attempts,
	}
}

func annotateUnverified(answer string, attempts int, explanation string) string {
	note := fmt.Sprintf("[UNVERIFIED: failed verification after %d attempt(s).", attempts)
	if explanation != "" {
		note += " Last finding: " + explanation
	}
	note += "]"
	if answer == "" {
		return note
	}
	return answer + "\n\n" + note
}
