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

type AreaHandler struct {
	log         *logger.Logger
	areaService services.AreaService
}

func NewAreaHandler(log *logger.Logger, areaService services.AreaService) *AreaHandler {
	return &AreaHandler{
		log:         log.With("handler", "AreaHandler"),
		areaService: areaService,
	}
}

type createAreaRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	ManagerID   *uuid.UUID `json:"manager_id"`
}

// POST /api/areas
func (h *AreaHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing request identity"))
		return
	}
	var req createAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	area, err := h.areaService.CreateArea(c.Request.Context(), services.CreateAreaInput{
		CompanyID:   rd.CompanyID,
		CreatedBy:   rd.UserID,
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, area)
}

// GET /api/areas
func (h *AreaHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing request identity"))
		return
	}
	areas, err := h.areaService.ListAreas(c.Request.Context(), rd.CompanyID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, areas)
}

// GET /api/areas/:sequentialId
func (h *AreaHandler) Get(c *gin.Context) {
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
	area, err := h.areaService.GetAreaBySequentialID(c.Request.Context(), rd.CompanyID, sequentialID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, area)
}
