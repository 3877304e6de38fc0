package contract

import (
	"context"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/entity"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	// FindOne returns nil, nil when the document does not exist for userId.
	FindOne(ctx context.Context, id uuid.UUID, userId string) (*entity.Document, error)
	// FindAllByUser lists the tenant's documents, newest first.
	FindAllByUser(ctx context.Context, userId string) ([]*entity.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus, chunkCount int, errorMessage string) error
}
