package contract

import (
	"context"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/entity"

	"github.com/google/uuid"
)

// ScoredDocumentChunk wraps DocumentChunk with its similarity score
type ScoredDocumentChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	// SearchSimilarWithScore returns chunks of the tenant's indexed documents
	// whose cosine similarity to embedding is at least threshold, best first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId string, threshold float64) ([]*ScoredDocumentChunk, error)
}
