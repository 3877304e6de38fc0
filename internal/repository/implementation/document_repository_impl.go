package implementation

import (
	"context"
	"errors"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/entity"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/mapper"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/model"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/contract"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, document *entity.Document) error {
	m := r.mapper.ToModel(document)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, id uuid.UUID, userId string) (*entity.Document, error) {
	var m model.Document
	err := specification.Apply(r.db.WithContext(ctx),
		specification.ByID{ID: id},
		specification.ByUserID{UserID: userId},
	).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) FindAllByUser(ctx context.Context, userId string) ([]*entity.Document, error) {
	var models []*model.Document
	err := specification.Apply(r.db.WithContext(ctx),
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	).Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus, chunkCount int, errorMessage string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Scopes(specification.ByID{ID: id}.Apply).
		Updates(map[string]interface{}{
			"status":        string(status),
			"chunk_count":   chunkCount,
			"error_message": errorMessage,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
