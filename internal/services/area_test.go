package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamyda/lamyda-backend/internal/apperr"
	"github.com/lamyda/lamyda-backend/internal/types"
)

type fakeAreaRepo struct {
	created    []*types.Area
	listResult []*types.Area
	failCreate error
}

func (r *fakeAreaRepo) Create(_ context.Context, _ *gorm.DB, area *types.Area) (*types.Area, error) {
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	r.created = append(r.created, area)
	return area, nil
}

func (r *fakeAreaRepo) ListActiveByCompanyID(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.Area, error) {
	return r.listResult, nil
}

func (r *fakeAreaRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Area, error) {
	for _, area := range r.created {
		if area.ID == id {
			return area, nil
		}
	}
	return nil, nil
}

func TestCreateAreaTrimsAndDefaults(t *testing.T) {
	repo := &fakeAreaRepo{}
	svc := NewAreaService(nil, testLogger(t), repo)

	area, err := svc.CreateArea(context.Background(), CreateAreaInput{
		CompanyID:   uuid.New(),
		CreatedBy:   uuid.New(),
		Name:        "  Finance  ",
		Description: "",
	})
	if err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	if area.Name != "Finance" {
		t.Fatalf("name = %q, want trimmed", area.Name)
	}
	if area.Description != nil {
		t.Fatalf("description = %v, want nil for blank input", *area.Description)
	}
	if !area.IsActive {
		t.Fatal("area should be created active")
	}
}

func TestCreateAreaValidation(t *testing.T) {
	svc := NewAreaService(nil, testLogger(t), &fakeAreaRepo{})

	_, err := svc.CreateArea(context.Background(), CreateAreaInput{
		CompanyID: uuid.New(),
		CreatedBy: uuid.New(),
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestListAreasSequentialNumbering(t *testing.T) {
	repo := &fakeAreaRepo{listResult: []*types.Area{
		{ID: uuid.New(), Name: "newest"},
		{ID: uuid.New(), Name: "middle"},
		{ID: uuid.New(), Name: "oldest"},
	}}
	svc := NewAreaService(nil, testLogger(t), repo)

	listed, err := svc.ListAreas(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ListAreas: %v", err)
	}
	for i, a := range listed {
		if a.SequentialID != i+1 {
			t.Fatalf("position %d sequential id = %d", i, a.SequentialID)
		}
	}

	got, err := svc.GetAreaBySequentialID(context.Background(), uuid.New(), 2)
	if err != nil {
		t.Fatalf("GetAreaBySequentialID: %v", err)
	}
	if got.Area.Name != "middle" {
		t.Fatalf("area = %q, want middle", got.Area.Name)
	}
	if _, err := svc.GetAreaBySequentialID(context.Background(), uuid.New(), 0); !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}
