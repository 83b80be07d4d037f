package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/types"
)

type DocumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, document *types.Document) (*types.Document, error)
	ListByProcessID(ctx context.Context, tx *gorm.DB, processID uuid.UUID) ([]*types.Document, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (r *documentRepo) Create(ctx context.Context, tx *gorm.DB, document *types.Document) (*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(document).Error; err != nil {
		return nil, err
	}
	return document, nil
}

func (r *documentRepo) ListByProcessID(ctx context.Context, tx *gorm.DB, processID uuid.UUID) ([]*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Document
	if err := transaction.WithContext(ctx).
		Where("process_id = ?", processID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
