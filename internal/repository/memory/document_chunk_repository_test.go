package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDocument(t *testing.T, docs *DocumentRepository, chunks *DocumentChunkRepository, userId string, status entity.DocumentStatus, contents map[string][]float32) *entity.Document {
	t.Helper()
	ctx := context.Background()

	doc := &entity.Document{UserId: userId, Filename: userId + ".txt", Status: status}
	require.NoError(t, docs.Create(ctx, doc))

	i := 0
	batch := make([]*entity.DocumentChunk, 0, len(contents))
	for content, vec := range contents {
		batch = append(batch, &entity.DocumentChunk{DocumentId: doc.Id, Content: content, EmbeddingValue: vec, ChunkIndex: i})
		i++
	}
	require.NoError(t, chunks.CreateBulk(ctx, batch))
	return doc
}

func TestSearchSimilarWithScore_TenantIsolation(t *testing.T) {
	store := NewStore()
	docs := NewDocumentRepository(store).(*DocumentRepository)
	chunks := NewDocumentChunkRepository(store).(*DocumentChunkRepository)

	seedDocument(t, docs, chunks, "tenant-a", entity.DocumentStatusIndexed, map[string][]float32{
		"a: refunds are issued within 30 days": {1, 0, 0},
	})
	seedDocument(t, docs, chunks, "tenant-b", entity.DocumentStatusIndexed, map[string][]float32{
		"b: refunds are never issued": {1, 0, 0},
	})

	results, err := chunks.SearchSimilarWithScore(context.Background(), []float32{1, 0, 0}, 10, "tenant-a", 0.7)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a: refunds are issued within 30 days", results[0].Chunk.Content)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)

	results, err = chunks.SearchSimilarWithScore(context.Background(), []float32{1, 0, 0}, 10, "tenant-c", 0.7)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSimilarWithScore_Filters(t *testing.T) {
	store := NewStore()
	docs := NewDocumentRepository(store).(*DocumentRepository)
	chunks := NewDocumentChunkRepository(store).(*DocumentChunkRepository)

	seedDocument(t, docs, chunks, "tenant-a", entity.DocumentStatusIndexed, map[string][]float32{
		"exact":     {1, 0, 0},
		"close":     {0.9, 0.1, 0},
		"unrelated": {0, 1, 0},
	})
	seedDocument(t, docs, chunks, "tenant-a", entity.DocumentStatusProcessing, map[string][]float32{
		"still processing": {1, 0, 0},
	})

	tests := []struct {
		name      string
		limit     int
		threshold float64
		want      []string
	}{
		{name: "threshold drops unrelated and processing", limit: 10, threshold: 0.7, want: []string{"exact", "close"}},
		{name: "limit keeps best", limit: 1, threshold: 0.7, want: []string{"exact"}},
		{name: "high threshold", limit: 10, threshold: 0.999, want: []string{"exact"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := chunks.SearchSimilarWithScore(context.Background(), []float32{1, 0, 0}, tt.limit, "tenant-a", tt.threshold)
			require.NoError(t, err)

			got := make([]string, len(results))
			for i, r := range results {
				got[i] = r.Chunk.Content
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocumentRepository_FindAllByUserNewestFirst(t *testing.T) {
	store := NewStore()
	docs := NewDocumentRepository(store)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, docs.Create(ctx, &entity.Document{UserId: "u1", Filename: "old.txt", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, docs.Create(ctx, &entity.Document{UserId: "u1", Filename: "new.txt", CreatedAt: now}))
	require.NoError(t, docs.Create(ctx, &entity.Document{UserId: "u2", Filename: "other.txt", CreatedAt: now}))

	list, err := docs.FindAllByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new.txt", list[0].Filename)
	assert.Equal(t, "old.txt", list[1].Filename)
	assert.Equal(t, entity.DocumentStatusProcessing, list[0].Status)
}

func TestDocumentRepository_UpdateStatus(t *testing.T) {
	store := NewStore()
	docs := NewDocumentRepository(store)
	ctx := context.Background()

	doc := &entity.Document{UserId: "u1", Filename: "a.txt"}
	require.NoError(t, docs.Create(ctx, doc))
	require.NoError(t, docs.UpdateStatus(ctx, doc.Id, entity.DocumentStatusIndexed, 3, ""))

	got, err := docs.FindOne(ctx, doc.Id, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.DocumentStatusIndexed, got.Status)
	assert.Equal(t, 3, got.ChunkCount)
	assert.NotNil(t, got.UpdatedAt)

	other, err := docs.FindOne(ctx, doc.Id, "u2")
	require.NoError(t, err)
	assert.Nil(t, other)

	assert.Error(t, docs.UpdateStatus(ctx, uuid.New(), entity.DocumentStatusError, 0, "boom"))
}
