package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/types"
)

type AreaRepo interface {
	Create(ctx context.Context, tx *gorm.DB, area *types.Area) (*types.Area, error)
	ListActiveByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Area, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Area, error)
}

type areaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAreaRepo(db *gorm.DB, baseLog *logger.Logger) AreaRepo {
	return &areaRepo{db: db, log: baseLog.With("repo", "AreaRepo")}
}

func (r *areaRepo) Create(ctx context.Context, tx *gorm.DB, area *types.Area) (*types.Area, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(area).Error; err != nil {
		return nil, err
	}
	return area, nil
}

func (r *areaRepo) ListActiveByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Area, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Area
	if err := transaction.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *areaRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Area, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Area
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
