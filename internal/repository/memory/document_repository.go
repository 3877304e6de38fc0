package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/entity"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	store *Store
}

func NewDocumentRepository(store *Store) contract.DocumentRepository {
	return &DocumentRepository{store: store}
}

func (r *DocumentRepository) Create(ctx context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if document.Id == uuid.Nil {
		document.Id = uuid.New()
	}
	if document.CreatedAt.IsZero() {
		document.CreatedAt = time.Now()
	}
	if document.Status == "" {
		document.Status = entity.DocumentStatusProcessing
	}

	stored := *document
	r.store.documents.Set(document.Id.String(), &stored, cache.NoExpiration)
	return nil
}

func (r *DocumentRepository) FindOne(ctx context.Context, id uuid.UUID, userId string) (*entity.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	x, found := r.store.documents.Get(id.String())
	if !found {
		return nil, nil
	}
	doc := *x.(*entity.Document)
	if doc.UserId != userId {
		return nil, nil
	}
	return &doc, nil
}

func (r *DocumentRepository) FindAllByUser(ctx context.Context, userId string) ([]*entity.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	docs := make([]*entity.Document, 0)
	for _, item := range r.store.documents.Items() {
		doc := *item.Object.(*entity.Document)
		if doc.UserId == userId {
			docs = append(docs, &doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus, chunkCount int, errorMessage string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	x, found := r.store.documents.Get(id.String())
	if !found {
		return gorm.ErrRecordNotFound
	}
	doc := *x.(*entity.Document)
	now := time.Now()
	doc.Status = status
	doc.ChunkCount = chunkCount
	doc.ErrorMessage = errorMessage
	doc.UpdatedAt = &now
	r.store.documents.Set(id.String(), &doc, cache.NoExpiration)
	return nil
}
