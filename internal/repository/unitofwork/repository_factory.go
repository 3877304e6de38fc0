package unitofwork

import (
	"context"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/contract"

	"gorm.io/gorm"
)

type gormRepositoryFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &gormRepositoryFactory{db: db}
}

func (f *gormRepositoryFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db)
}

// passthroughUnitOfWork hands out fixed repositories and has nothing to
// commit. The in-memory store applies every write immediately, so a
// rollback cannot undo earlier writes.
type passthroughUnitOfWork struct {
	documents contract.DocumentRepository
	chunks    contract.DocumentChunkRepository
	active    bool
}

func (u *passthroughUnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return errTxStarted
	}
	u.active = true
	return nil
}

func (u *passthroughUnitOfWork) Commit() error {
	if !u.active {
		return errTxNotActive
	}
	u.active = false
	return nil
}

func (u *passthroughUnitOfWork) Rollback() error {
	if !u.active {
		return errTxNotActive
	}
	u.active = false
	return nil
}

func (u *passthroughUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return u.documents
}

func (u *passthroughUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return u.chunks
}

type passthroughFactory struct {
	documents contract.DocumentRepository
	chunks    contract.DocumentChunkRepository
}

// NewPassthroughFactory wraps repositories that have no transaction support,
// such as the in-memory evidence store.
func NewPassthroughFactory(documents contract.DocumentRepository, chunks contract.DocumentChunkRepository) RepositoryFactory {
	return &passthroughFactory{documents: documents, chunks: chunks}
}

func (f *passthroughFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &passthroughUnitOfWork{documents: f.documents, chunks: f.chunks}
}
