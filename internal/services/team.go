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

type CreateTeamInput struct {
	CompanyID    uuid.UUID
	CreatedBy    uuid.UUID
	Name         string
	Description  string
	AreaID       *uuid.UUID
	TeamLeaderID *uuid.UUID
	MemberIDs    []uuid.UUID
}

type ProjectedTeam struct {
	SequentialID int `json:"sequential_id"`
	*types.Team
}

type TeamService interface {
	// CreateTeam inserts the team and then adds leader/member rows
	// best-effort: a failed membership insert is logged, never fails the
	// creation.
	CreateTeam(ctx context.Context, in CreateTeamInput) (*types.Team, error)
	ListTeams(ctx context.Context, companyID uuid.UUID) ([]ProjectedTeam, error)
	GetTeamBySequentialID(ctx context.Context, companyID uuid.UUID, sequentialID int) (*ProjectedTeam, error)
}

type teamService struct {
	db       *gorm.DB
	log      *logger.Logger
	teamRepo repos.TeamRepo
}

func NewTeamService(db *gorm.DB, baseLog *logger.Logger, teamRepo repos.TeamRepo) TeamService {
	return &teamService{
		db:       db,
		log:      baseLog.With("service", "TeamService"),
		teamRepo: teamRepo,
	}
}

func (ts *teamService) CreateTeam(ctx context.Context, in CreateTeamInput) (*types.Team, error) {
	const op = "create team"
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(op, fmt.Errorf("missing team name"))
	}
	if in.CompanyID == uuid.Nil {
		return nil, apperr.Validation(op, fmt.Errorf("missing company id"))
	}
	if in.CreatedBy == uuid.Nil {
		return nil, apperr.Validation(op, fmt.Errorf("missing creating user id"))
	}

	team := &types.Team{
		ID:           uuid.New(),
		CompanyID:    in.CompanyID,
		Name:         name,
		Description:  strPtrOrNil(in.Description),
		AreaID:       in.AreaID,
		TeamLeaderID: in.TeamLeaderID,
		IsActive:     true,
		CreatedBy:    in.CreatedBy,
		UpdatedBy:    in.CreatedBy,
	}
	if _, err := ts.teamRepo.Create(ctx, nil, team); err != nil {
		ts.log.Error("team insert failed", "company_id", in.CompanyID, "error", err)
		return nil, apperr.Persistence(op, err)
	}

	if in.TeamLeaderID != nil {
		ts.addMember(ctx, team.ID, *in.TeamLeaderID, "leader", in.CreatedBy)
	}
	for _, memberID := range in.MemberIDs {
		if in.TeamLeaderID != nil && memberID == *in.TeamLeaderID {
			continue
		}
		ts.addMember(ctx, team.ID, memberID, "member", in.CreatedBy)
	}

	return team, nil
}

func (ts *teamService) addMember(ctx context.Context, teamID, userID uuid.UUID, role string, addedBy uuid.UUID) {
	err := ts.teamRepo.AddMember(ctx, nil, &types.TeamMember{
		ID:      uuid.New(),
		TeamID:  teamID,
		UserID:  userID,
		Role:    role,
		AddedBy: addedBy,
	})
	if err != nil {
		ts.log.Warn("failed to add team member, continuing",
			"team_id", teamID, "user_id", userID, "role", role, "error", err)
	}
}

func (ts *teamService) ListTeams(ctx context.Context, companyID uuid.UUID) ([]ProjectedTeam, error) {
	snapshot, err := ts.teamRepo.ListActiveByCompanyID(ctx, nil, companyID)
	if err != nil {
		return nil, apperr.Persistence("list teams", err)
	}
	projected := make([]ProjectedTeam, len(snapshot))
	for i, t := range snapshot {
		projected[i] = ProjectedTeam{SequentialID: i + 1, Team: t}
	}
	return projected, nil
}

func (ts *teamService) GetTeamBySequentialID(ctx context.Context, companyID uuid.UUID, sequentialID int) (*ProjectedTeam, error) {
	snapshot, err := ts.teamRepo.ListActiveByCompanyID(ctx, nil, companyID)
	if err != nil {
		return nil, apperr.Persistence("list teams", err)
	}
	team, err := resolveSequential(snapshot, sequentialID)
	if err != nil {
		return nil, err
	}
	return &ProjectedTeam{SequentialID: sequentialID, Team: team}, nil
}
