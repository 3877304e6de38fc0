package memory

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/entity"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type DocumentChunkRepository struct {
	store *Store
}

func NewDocumentChunkRepository(store *Store) contract.DocumentChunkRepository {
	return &DocumentChunkRepository{store: store}
}

func (r *DocumentChunkRepository) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, c := range chunks {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		stored := *c
		stored.EmbeddingValue = append([]float32(nil), c.EmbeddingValue...)
		r.store.chunks.Set(c.Id.String(), &stored, cache.NoExpiration)
	}
	return nil
}

func (r *DocumentChunkRepository) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for key, item := range r.store.chunks.Items() {
		if item.Object.(*entity.DocumentChunk).DocumentId == documentId {
			r.store.chunks.Delete(key)
		}
	}
	return nil
}

func (r *DocumentChunkRepository) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId string, threshold float64) ([]*contract.ScoredDocumentChunk, error) {
	if limit <= 0 {
		limit = 4
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	owned := make(map[uuid.UUID]bool)
	for _, item := range r.store.documents.Items() {
		doc := item.Object.(*entity.Document)
		if doc.UserId == userId && doc.Status == entity.DocumentStatusIndexed {
			owned[doc.Id] = true
		}
	}

	scored := make([]*contract.ScoredDocumentChunk, 0)
	for _, item := range r.store.chunks.Items() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk := item.Object.(*entity.DocumentChunk)
		if !owned[chunk.DocumentId] {
			continue
		}
		similarity := cosineSimilarity(embedding, chunk.EmbeddingValue)
		if similarity < threshold {
			continue
		}
		c := *chunk
		scored = append(scored, &contract.ScoredDocumentChunk{Chunk: &c, Similarity: similarity})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity == scored[j].Similarity {
			return scored[i].Chunk.ChunkIndex < scored[j].Chunk.ChunkIndex
		}
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// cosineSimilarity returns 0 for mismatched or zero-length vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
