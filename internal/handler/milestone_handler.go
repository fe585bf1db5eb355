package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/research-nest/researchnest-api/internal/models"
	"github.com/research-nest/researchnest-api/internal/service"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
	"github.com/research-nest/researchnest-api/pkg/response"
)

// MilestoneHandler exposes milestone endpoints.
type MilestoneHandler struct {
	milestones *service.MilestoneService
}

// NewMilestoneHandler constructs handler.
func NewMilestoneHandler(milestones *service.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestones: milestones}
}

// Create godoc
// @Summary Create a milestone for a student
// @Tags Milestones
// @Accept json
// @Produce json
// @Param payload body models.CreateMilestoneRequest true "Milestone payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /milestones [post]
func (h *MilestoneHandler) Create(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid milestone payload"))
		return
	}
	milestone, err := h.milestones.Create(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, milestone)
}

// ListByStudent godoc
// @Summary List a student's milestones with embedded stages
// @Tags Milestones
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /milestones/student/{studentId} [get]
func (h *MilestoneHandler) ListByStudent(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	milestones, err := h.milestones.ListByStudent(c.Request.Context(), principal, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, milestones, nil)
}

// UpdateStatus godoc
// @Summary Update milestone status
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path int true "Milestone ID"
// @Param payload body models.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /milestones/{id}/status [patch]
func (h *MilestoneHandler) UpdateStatus(c *gin.Context) {
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
	milestone, err := h.milestones.UpdateStatus(c.Request.Context(), principal, id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, milestone, nil)
}

// Freeze godoc
// @Summary Freeze or unfreeze a milestone
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path int true "Milestone ID"
// @Param payload body models.FreezeRequest true "Freeze payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /milestones/{id}/freeze [patch]
func (h *MilestoneHandler) Freeze(c *gin.Context) {
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
	milestone, err := h.milestones.Freeze(c.Request.Context(), principal, id, *req.Freeze)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, milestone, nil)
}

// Approve godoc
// @Summary Approve a milestone pending approval
// @Tags Milestones
// @Produce json
// @Param id path int true "Milestone ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /milestones/{id}/approve [patch]
func (h *MilestoneHandler) Approve(c *gin.Context) {
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
	milestone, err := h.milestones.Approve(c.Request.Context(), principal, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, milestone, nil)
}

// Delete godoc
// @Summary Delete a milestone and its descendants
// @Tags Milestones
// @Produce json
// @Param id path int true "Milestone ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /milestones/{id} [delete]
func (h *MilestoneHandler) Delete(c *gin.Context) {
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
	if err := h.milestones.Delete(c.Request.Context(), principal, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
