package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamyda/lamyda-backend/internal/apperr"
	"github.com/lamyda/lamyda-backend/internal/types"
)

type fakeTeamRepo struct {
	created       []*types.Team
	members       []*types.TeamMember
	listResult    []*types.Team
	failCreate    error
	failAddMember error
}

func (r *fakeTeamRepo) Create(_ context.Context, _ *gorm.DB, team *types.Team) (*types.Team, error) {
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	r.created = append(r.created, team)
	return team, nil
}

func (r *fakeTeamRepo) ListActiveByCompanyID(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.Team, error) {
	return r.listResult, nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Team, error) {
	for _, team := range r.created {
		if team.ID == id {
			return team, nil
		}
	}
	return nil, nil
}

func (r *fakeTeamRepo) AddMember(_ context.Context, _ *gorm.DB, member *types.TeamMember) error {
	if r.failAddMember != nil {
		return r.failAddMember
	}
	r.members = append(r.members, member)
	return nil
}

func (r *fakeTeamRepo) ListMembers(_ context.Context, _ *gorm.DB, teamID uuid.UUID) ([]*types.TeamMember, error) {
	var out []*types.TeamMember
	for _, m := range r.members {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestCreateTeamAddsLeaderAndMembers(t *testing.T) {
	repo := &fakeTeamRepo{}
	svc := NewTeamService(nil, testLogger(t), repo)

	leaderID := uuid.New()
	memberID := uuid.New()
	team, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		CompanyID:    uuid.New(),
		CreatedBy:    uuid.New(),
		Name:         "Support",
		TeamLeaderID: &leaderID,
		MemberIDs:    []uuid.UUID{memberID, leaderID},
	})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if len(repo.members) != 2 {
		t.Fatalf("member rows = %d, want 2 (leader listed twice joins once)", len(repo.members))
	}
	if repo.members[0].UserID != leaderID || repo.members[0].Role != "leader" {
		t.Fatalf("first member = %+v, want the leader", repo.members[0])
	}
	if repo.members[1].UserID != memberID || repo.members[1].Role != "member" {
		t.Fatalf("second member = %+v", repo.members[1])
	}
	if !team.IsActive {
		t.Fatal("team should be created active")
	}
}

func TestCreateTeamMembershipFailureIsSwallowed(t *testing.T) {
	repo := &fakeTeamRepo{failAddMember: errors.New("duplicate key")}
	svc := NewTeamService(nil, testLogger(t), repo)

	leaderID := uuid.New()
	team, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		CompanyID:    uuid.New(),
		CreatedBy:    uuid.New(),
		Name:         "Support",
		TeamLeaderID: &leaderID,
	})
	if err != nil {
		t.Fatalf("CreateTeam: %v, membership failures must not fail creation", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("teams = %d, want 1", len(repo.created))
	}
	if team == nil {
		t.Fatal("expected created team")
	}
}

func TestCreateTeamValidation(t *testing.T) {
	repo := &fakeTeamRepo{}
	svc := NewTeamService(nil, testLogger(t), repo)

	_, err := svc.CreateTeam(context.Background(), CreateTeamInput{
		CompanyID: uuid.New(),
		CreatedBy: uuid.New(),
		Name:      " ",
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestGetTeamBySequentialID(t *testing.T) {
	repo := &fakeTeamRepo{listResult: []*types.Team{
		{ID: uuid.New(), Name: "newest"},
		{ID: uuid.New(), Name: "oldest"},
	}}
	svc := NewTeamService(nil, testLogger(t), repo)

	got, err := svc.GetTeamBySequentialID(context.Background(), uuid.New(), 2)
	if err != nil {
		t.Fatalf("GetTeamBySequentialID: %v", err)
	}
	if got.Team.Name != "oldest" {
		t.Fatalf("team = %q, want oldest", got.Team.Name)
	}
	if _, err := svc.GetTeamBySequentialID(context.Background(), uuid.New(), 3); !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}
