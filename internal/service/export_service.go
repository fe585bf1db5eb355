package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
	"github.com/research-nest/researchnest-api/pkg/export"
)

// ReportFormat selects the rendering of a department report.
type ReportFormat string

const (
	ReportFormatPDF ReportFormat = "pdf"
	ReportFormatCSV ReportFormat = "csv"
)

// Report is a rendered department progress report.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders a department's milestone progress as a tabular
// report for faculty.
type ExportService struct {
	faculty    facultyDirectory
	milestones departmentMilestoneRepository
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(faculty facultyDirectory, milestones departmentMilestoneRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{faculty: faculty, milestones: milestones, csv: csv, pdf: pdf, logger: logger}
}

var reportHeaders = []string{"Student", "Milestone", "Status", "Frozen", "Approved At"}

// DepartmentReport renders every milestone in the faculty member's
// department. Gated like the other faculty queries: self only.
func (s *ExportService) DepartmentReport(ctx context.Context, principal models.Principal, facultyID string, format ReportFormat) (*Report, error) {
	if !principal.IsFaculty() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty can export reports")
	}
	if principal.ID != facultyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "faculty can only export their own department")
	}

	faculty, err := s.faculty.FindByID(ctx, facultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	milestones, err := s.milestones.ListByDepartment(ctx, faculty.Department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department milestones")
	}

	dataset := export.Dataset{Headers: reportHeaders, Rows: make([]map[string]string, 0, len(milestones))}
	for _, m := range milestones {
		row := map[string]string{
			"Student":     m.StudentID,
			"Milestone":   m.Name,
			"Status":      string(m.Status),
			"Frozen":      fmt.Sprintf("%t", m.IsFrozen),
			"Approved At": "",
		}
		if m.ApprovedAt != nil {
			row["Approved At"] = m.ApprovedAt.Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	token := uuid.NewString()
	switch format {
	case ReportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return &Report{
			Filename:    fmt.Sprintf("progress-%s-%s.csv", faculty.Department, token[:8]),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case ReportFormatPDF:
		title := fmt.Sprintf("%s department progress", faculty.Department)
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return &Report{
			Filename:    fmt.Sprintf("progress-%s-%s.pdf", faculty.Department, token[:8]),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}
