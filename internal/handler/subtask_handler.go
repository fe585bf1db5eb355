package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/research-nest/researchnest-api/internal/models"
	"github.com/research-nest/researchnest-api/internal/service"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
	"github.com/research-nest/researchnest-api/pkg/response"
)

// SubtaskHandler exposes subtask endpoints.
type SubtaskHandler struct {
	subtasks *service.SubtaskService
}

// NewSubtaskHandler constructs handler.
func NewSubtaskHandler(subtasks *service.SubtaskService) *SubtaskHandler {
	return &SubtaskHandler{subtasks: subtasks}
}

// Create godoc
// @Summary Create a subtask under a task
// @Tags Subtasks
// @Accept json
// @Produce json
// @Param payload body models.CreateSubtaskRequest true "Subtask payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subtasks [post]
func (h *SubtaskHandler) Create(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subtask payload"))
		return
	}
	subtask, err := h.subtasks.Create(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subtask)
}

// ListByTask godoc
// @Summary List subtasks of a task
// @Tags Subtasks
// @Produce json
// @Param taskId path int true "Task ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subtasks/task/{taskId} [get]
func (h *SubtaskHandler) ListByTask(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	taskID, err := pathID(c, "taskId")
	if err != nil {
		response.Error(c, err)
		return
	}
	subtasks, err := h.subtasks.ListByTask(c.Request.Context(), principal, taskID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subtasks, nil)
}

// Update godoc
// @Summary Update a subtask's name, due date or status
// @Tags Subtasks
// @Accept json
// @Produce json
// @Param id path int true "Subtask ID"
// @Param payload body models.UpdateSubtaskRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subtasks/{id} [put]
func (h *SubtaskHandler) Update(c *gin.Context) {
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
	var req models.UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subtask payload"))
		return
	}
	subtask, err := h.subtasks.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subtask, nil)
}

// Delete godoc
// @Summary Delete a subtask
// @Tags Subtasks
// @Produce json
// @Param id path int true "Subtask ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subtasks/{id} [delete]
func (h *SubtaskHandler) Delete(c *gin.Context) {
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
	if err := h.subtasks.Delete(c.Request.Context(), principal, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
