package evidence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/contract"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/embedding"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultLimit     = 4
	DefaultThreshold = 0.7

	module = "evidence"
)

// ErrRetrievalUnavailable marks a retrieval that degraded to empty evidence.
// It is logged and counted, never returned to callers of Retrieve.
var ErrRetrievalUnavailable = errors.New("evidence retrieval unavailable")

var errEmbedding = errors.New("query embedding failed")

// Searcher is the similarity-search half of the vector store.
type Searcher interface {
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId string, threshold float64) ([]*contract.ScoredDocumentChunk, error)
}

// Passage is a decoded search hit.
type Passage struct {
	Content    string
	DocumentID uuid.UUID
	Similarity float64
}

type Option func(*Gateway)

func WithThreshold(threshold float64) Option {
	return func(g *Gateway) {
		g.threshold = threshold
	}
}

// WithDegradationHook is called with a short reason whenever a retrieval
// falls back to empty evidence.
func WithDegradationHook(hook func(reason string)) Option {
	return func(g *Gateway) {
		g.onDegraded = hook
	}
}

// Gateway turns a question into tenant-scoped evidence passages. It holds no
// per-request state and is safe for concurrent use.
type Gateway struct {
	embedder   embedding.EmbeddingProvider
	searcher   Searcher
	threshold  float64
	logger     logger.ILogger
	tracer     trace.Tracer
	onDegraded func(reason string)
}

func NewGateway(embedder embedding.EmbeddingProvider, searcher Searcher, log logger.ILogger, opts ...Option) *Gateway {
	g := &Gateway{
		embedder:  embedder,
		searcher:  searcher,
		threshold: DefaultThreshold,
		logger:    log,
		tracer:    otel.Tracer("axiom/evidence"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Retrieve returns passage contents in descending similarity. Failures and
// timeouts yield an empty slice.
func (g *Gateway) Retrieve(ctx context.Context, question, tenantID string, limit int) []string {
	passages := g.RetrievePassages(ctx, question, tenantID, limit)
	contents := make([]string, len(passages))
	for i, p := range passages {
		contents[i] = p.Content
	}
	return contents
}

func (g *Gateway) RetrievePassages(ctx context.Context, question, tenantID string, limit int) []Passage {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ctx, span := g.tracer.Start(ctx, "evidence.retrieve",
		trace.WithAttributes(attribute.Int("evidence.limit", limit)))
	defer span.End()

	if strings.TrimSpace(tenantID) == "" {
		g.logger.Warn(module, "Retrieval refused without tenant", nil)
		return []Passage{}
	}

	passages, err := g.search(ctx, question, tenantID, limit)
	if err != nil {
		reason := "search"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = "timeout"
		} else if errors.Is(err, errEmbedding) {
			reason = "embedding"
		}
		span.RecordError(err)
		g.logger.Warn(module, "Retrieval degraded to empty evidence", map[string]interface{}{
			"tenant_id": tenantID,
			"reason":    reason,
			"error":     fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err).Error(),
		})
		if g.onDegraded != nil {
			g.onDegraded(reason)
		}
		return []Passage{}
	}

	span.SetAttributes(attribute.Int("evidence.count", len(passages)))
	g.logger.Debug(module, "Evidence retrieved", map[string]interface{}{
		"tenant_id": tenantID,
		"count":     len(passages),
	})
	return passages
}

func (g *Gateway) search(ctx context.Context, question, tenantID string, limit int) ([]Passage, error) {
	emb, err := g.embedder.Generate(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errEmbedding, err)
	}
	if emb == nil || len(emb.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty vector", errEmbedding)
	}

	scored, err := g.searcher.SearchSimilarWithScore(ctx, emb.Embedding.Values, limit, tenantID, g.threshold)
	if err != nil {
		return nil, err
	}

	return decode(scored, limit), nil
}

// decode enforces the boundary contract: no nil records, no empty content,
// at most limit passages.
func decode(scored []*contract.ScoredDocumentChunk, limit int) []Passage {
	passages := make([]Passage, 0, len(scored))
	for _, s := range scored {
		if s == nil || s.Chunk == nil {
			continue
		}
		content := strings.TrimSpace(s.Chunk.Content)
		if content == "" {
			continue
		}
		passages = append(passages, Passage{
			Content:    content,
			DocumentID: s.Chunk.DocumentId,
			Similarity: s.Similarity,
		})
		if len(passages) == limit {
			break
		}
	}
	return passages
}
