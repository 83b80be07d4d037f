package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/types"
)

type TeamRepo interface {
	Create(ctx context.Context, tx *gorm.DB, team *types.Team) (*types.Team, error)
	ListActiveByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Team, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Team, error)
	AddMember(ctx context.Context, tx *gorm.DB, member *types.TeamMember) error
	ListMembers(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.TeamMember, error)
}

type teamRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeamRepo(db *gorm.DB, baseLog *logger.Logger) TeamRepo {
	return &teamRepo{db: db, log: baseLog.With("repo", "TeamRepo")}
}

func (r *teamRepo) Create(ctx context.Context, tx *gorm.DB, team *types.Team) (*types.Team, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(team).Error; err != nil {
		return nil, err
	}
	return team, nil
}

func (r *teamRepo) ListActiveByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Team, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Team
	if err := transaction.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *teamRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Team, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Team
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *teamRepo) AddMember(ctx context.Context, tx *gorm.DB, member *types.TeamMember) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(member).Error
}

func (r *teamRepo) ListMembers(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.TeamMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TeamMember
	if err := transaction.WithContext(ctx).
		Where("team_id = ?", teamID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
