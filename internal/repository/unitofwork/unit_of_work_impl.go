package unitofwork

import (
	"context"
	"errors"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/contract"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	errTxStarted   = errors.New("transaction already started")
	errTxNotActive = errors.New("no active transaction")
)

type gormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *gormUnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return errTxStarted
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *gormUnitOfWork) Commit() error {
	if u.tx == nil {
		return errTxNotActive
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *gormUnitOfWork) Rollback() error {
	if u.tx == nil {
		return errTxNotActive
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *gormUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return implementation.NewDocumentRepository(u.conn())
}

func (u *gormUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return implementation.NewDocumentChunkRepository(u.conn())
}
