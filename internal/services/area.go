package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamyda/lamyda-backend/internal/apperr"
	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/repos"
	"github.com/lamyda/lamyda-backend/internal/types"
)

type CreateAreaInput struct {
	CompanyID   uuid.UUID
	CreatedBy   uuid.UUID
	Name        string
	Description string
	ManagerID   *uuid.UUID
}

type ProjectedArea struct {
	SequentialID int `json:"sequential_id"`
	*types.Area
}

type AreaService interface {
	CreateArea(ctx context.Context, in CreateAreaInput) (*types.Area, error)
	ListAreas(ctx context.Context, companyID uuid.UUID) ([]ProjectedArea, error)
	GetAreaBySequentialID(ctx context.Context, companyID uuid.UUID, sequentialID int) (*ProjectedArea, error)
}

type areaService struct {
	db       *gorm.DB
	log      *logger.Logger
	areaRepo repos.AreaRepo
}

func NewAreaService(db *gorm.DB, baseLog *logger.Logger, areaRepo repos.AreaRepo) AreaService {
	return &areaService{
		db:       db,
		log:      baseLog.With("service", "AreaService"),
		areaRepo: areaRepo,
	}
}

func (as *areaService) CreateArea(ctx context.Context, in CreateAreaInput) (*types.Area, error) {
	const op = "create area"
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(op, fmt.Errorf("missing area name"))
	}
	if in.CompanyID == uuid.Nil {
		return nil, apperr.Validation(op, fmt.Errorf("missing company id"))
	}
	if in.CreatedBy == uuid.Nil {
		return nil, apperr.Validation(op, fmt.Errorf("missing creating user id"))
	}

	area := &types.Area{
		ID:          uuid.New(),
		CompanyID:   in.CompanyID,
		Name:        name,
		Description: strPtrOrNil(in.Description),
		ManagerID:   in.ManagerID,
		IsActive:    true,
		CreatedBy:   in.CreatedBy,
		UpdatedBy:   in.CreatedBy,
	}
	if _, err := as.areaRepo.Create(ctx, nil, area); err != nil {
		as.log.Error("area insert failed", "company_id", in.CompanyID, "error", err)
		return nil, apperr.Persistence(op, err)
	}
	return area, nil
}

func (as *areaService) ListAreas(ctx context.Context, companyID uuid.UUID) ([]ProjectedArea, error) {
	snapshot, err := as.areaRepo.ListActiveByCompanyID(ctx, nil, companyID)
	if err != nil {
		return nil, apperr.Persistence("list areas", err)
	}
	projected := make([]ProjectedArea, len(snapshot))
	for i, a := range snapshot {
		projected[i] = ProjectedArea{SequentialID: i + 1, Area: a}
	}
	return projected, nil
}

func (as *areaService) GetAreaBySequentialID(ctx context.Context, companyID uuid.UUID, sequentialID int) (*ProjectedArea, error) {
	snapshot, err := as.areaRepo.ListActiveByCompanyID(ctx, nil, companyID)
	if err != nil {
		return nil, apperr.Persistence("list areas", err)
	}
	area, err := resolveSequential(snapshot, sequentialID)
	if err != nil {
		return nil, err
	}
	return &ProjectedArea{SequentialID: sequentialID, Area: area}, nil
}
