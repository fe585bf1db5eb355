package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/research-nest/researchnest-api/internal/service"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
	"github.com/research-nest/researchnest-api/pkg/response"
)

// FacultyHandler exposes department-level faculty queries.
type FacultyHandler struct {
	faculty *service.FacultyService
	exports *service.ExportService
}

// NewFacultyHandler constructs handler.
func NewFacultyHandler(faculty *service.FacultyService, exports *service.ExportService) *FacultyHandler {
	return &FacultyHandler{faculty: faculty, exports: exports}
}

// Students godoc
// @Summary Distinct students with milestones in the faculty's department
// @Tags Faculty
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id}/students [get]
func (h *FacultyHandler) Students(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.faculty.StudentsInDepartment(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Milestones godoc
// @Summary Milestones in the faculty's department
// @Tags Faculty
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id}/milestones [get]
func (h *FacultyHandler) Milestones(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.faculty.DepartmentMilestones(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Progress godoc
// @Summary Full department progress grouped by student
// @Tags Faculty
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id}/progress [get]
func (h *FacultyHandler) Progress(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.faculty.DepartmentProgress(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ExportProgress godoc
// @Summary Department progress report as PDF or CSV
// @Tags Faculty
// @Produce application/pdf
// @Param id path string true "Faculty ID"
// @Param format query string false "Report format (pdf or csv)" default(pdf)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id}/progress/export [get]
func (h *FacultyHandler) ExportProgress(c *gin.Context) {
	principal, err := principalFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatPDF)))
	if format != service.ReportFormatPDF && format != service.ReportFormatCSV {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv"))
		return
	}
	report, err := h.exports.DepartmentReport(c.Request.Context(), principal, c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
