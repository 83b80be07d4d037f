package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/types"
)

type ProcessRepo interface {
	Create(ctx context.Context, tx *gorm.DB, process *types.Process) (*types.Process, error)
	// ListActiveByCompanyID returns the company's active processes ordered by
	// creation time descending; positional order is what sequential ids are
	// derived from.
	ListActiveByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Process, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Process, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type processRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProcessRepo(db *gorm.DB, baseLog *logger.Logger) ProcessRepo {
	return &processRepo{db: db, log: baseLog.With("repo", "ProcessRepo")}
}

func (r *processRepo) Create(ctx context.Context, tx *gorm.DB, process *types.Process) (*types.Process, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(process).Error; err != nil {
		return nil, err
	}
	return process, nil
}

func (r *processRepo) ListActiveByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Process, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Process
	if err := transaction.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, true).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *processRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Process, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Process
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *processRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.Process{}).
		Where("id = ?", id).
		Updates(updates).Error
}
