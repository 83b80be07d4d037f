package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/requestdata"
	"github.com/lamyda/lamyda-backend/internal/services"
)

type TeamHandler struct {
	log         *logger.Logger
	teamService services.TeamService
}

func NewTeamHandler(log *logger.Logger, teamService services.TeamService) *TeamHandler {
	return &TeamHandler{
		log:         log.With("handler", "TeamHandler"),
		teamService: teamService,
	}
}

type createTeamRequest struct {
	Name         string      `json:"name" binding:"required"`
	Description  string      `json:"description"`
	AreaID       *uuid.UUID  `json:"area_id"`
	TeamLeaderID *uuid.UUID  `json:"team_leader_id"`
	MemberIDs    []uuid.UUID `json:"member_ids"`
}

// POST /api/teams
func (h *TeamHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing request identity"))
		return
	}
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	team, err := h.teamService.CreateTeam(c.Request.Context(), services.CreateTeamInput{
		CompanyID:    rd.CompanyID,
		CreatedBy:    rd.UserID,
		Name:         req.Name,
		Description:  req.Description,
		AreaID:       req.AreaID,
		TeamLeaderID: req.TeamLeaderID,
		MemberIDs:    req.MemberIDs,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, team)
}

// GET /api/teams
func (h *TeamHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing request identity"))
		return
	}
	teams, err := h.teamService.ListTeams(c.Request.Context(), rd.CompanyID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, teams)
}

// GET /api/teams/:sequentialId
func (h *TeamHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing request identity"))
		return
	}
	sequentialID, err := strconv.Atoi(c.Param("sequentialId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_sequential_id", fmt.Errorf("sequential id must be a number"))
		return
	}
	team, err := h.teamService.GetTeamBySequentialID(c.Request.Context(), rd.CompanyID, sequentialID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, team)
}
