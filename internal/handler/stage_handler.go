package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/research-nest/researchnest-api/internal/models"
	"github.com/research-nest/researchnest-api/internal/service"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
	"github.com/research-nest/researchnest-api/pkg/response"
)

// StageHandler exposes stage endpoints.
type StageHandler struct {
	stages *service.StageService
}

// NewStageHandler constructs handler.
func NewStageHandler(stages *service.StageService) *StageHandler {
	return &StageHandler{stages: stages}
}

// Create godoc
// @Summary Create a stage under a milestone
// @Tags Stages
// @Accept json
// @Produce json
// @Param payload body models.CreateStageRequest true "Stage payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stages [post]
func (h *StageHandler) Create(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid stage payload"))
		return
	}
	stage, err := h.stages.Create(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stage)
}

// ListByMilestone godoc
// @Summary List stages of a milestone
// @Tags Stages
// @Produce json
// @Param milestoneId path int true "Milestone ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stages/milestone/{milestoneId} [get]
func (h *StageHandler) ListByMilestone(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	milestoneID, err := pathID(c, "milestoneId")
	if err != nil {
		response.Error(c, err)
		return
	}
	stages, err := h.stages.ListByMilestone(c.Request.Context(), principal, milestoneID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stages, nil)
}

// UpdateStatus godoc
// @Summary Update stage status
// @Tags Stages
// @Accept json
// @Produce json
// @Param id path int true "Stage ID"
// @Param payload body models.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stages/{id}/status [patch]
func (h *StageHandler) UpdateStatus(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	stage, err := h.stages.UpdateStatus(c.Request.Context(), principal, id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stage, nil)
}

// Freeze godoc
// @Summary Freeze or unfreeze a stage
// @Tags Stages
// @Accept json
// @Produce json
// @Param id path int true "Stage ID"
// @Param payload body models.FreezeRequest true "Freeze payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stages/{id}/freeze [patch]
func (h *StageHandler) Freeze(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.FreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Freeze == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "freeze flag is required"))
		return
	}
	stage, err := h.stages.Freeze(c.Request.Context(), principal, id, *req.Freeze)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stage, nil)
}

// Delete godoc
// @Summary Delete a stage and its descendants
// @Tags Stages
// @Produce json
// @Param id path int true "Stage ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stages/{id} [delete]
func (h *StageHandler) Delete(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.stages.Delete(c.Request.Context(), principal, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
