package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/research-nest/researchnest-api/internal/models"
	"github.com/research-nest/researchnest-api/internal/service"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
	"github.com/research-nest/researchnest-api/pkg/response"
)

// NoteHandler exposes faculty note endpoints.
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler constructs handler.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// Create godoc
// @Summary Attach a faculty note to a student
// @Tags Notes
// @Accept json
// @Produce json
// @Param payload body models.CreateNoteRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid note payload"))
		return
	}
	note, err := h.notes.Create(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// ListByStudent godoc
// @Summary List notes attached to a student
// @Tags Notes
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /notes/student/{studentId} [get]
func (h *NoteHandler) ListByStudent(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	notes, err := h.notes.ListByStudent(c.Request.Context(), principal, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, nil)
}

// Delete godoc
// @Summary Delete a note the caller authored
// @Tags Notes
// @Produce json
// @Param id path int true "Note ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
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
	if err := h.notes.Delete(c.Request.Context(), principal, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
