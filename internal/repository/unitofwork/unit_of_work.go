package unitofwork

import (
	"context"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/contract"
)

// UnitOfWork groups the writes that replace a document's chunk set so a
// failed re-index never leaves the document half populated.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
}

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
