package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
)

type facultyDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type departmentMilestoneRepository interface {
	ListByDepartment(ctx context.Context, department string) ([]models.Milestone, error)
	DistinctStudentsByDepartment(ctx context.Context, department string) ([]models.Student, error)
}

type progressAssembler interface {
	AssembleTree(ctx context.Context, studentID string) (*models.StudentProgress, error)
}

// DepartmentStudents lists the students supervised within a department.
type DepartmentStudents struct {
	FacultyID  string           `json:"faculty_id"`
	Department string           `json:"department"`
	Students   []models.Student `json:"students"`
}

// DepartmentMilestones lists every milestone scoped to a department.
type DepartmentMilestones struct {
	FacultyID  string             `json:"faculty_id"`
	Department string             `json:"department"`
	Milestones []models.Milestone `json:"milestones"`
}

// FacultyService answers the department-scoped faculty queries. Every
// operation is limited to the requesting faculty member's own id and
// department.
type FacultyService struct {
	faculty    facultyDirectory
	milestones departmentMilestoneRepository
	progress   progressAssembler
	logger     *zap.Logger
}

// NewFacultyService constructs the faculty service.
func NewFacultyService(faculty facultyDirectory, milestones departmentMilestoneRepository, progress progressAssembler, logger *zap.Logger) *FacultyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{faculty: faculty, milestones: milestones, progress: progress, logger: logger}
}

// StudentsInDepartment returns each student with at least one milestone in
// the faculty member's department, exactly once.
func (s *FacultyService) StudentsInDepartment(ctx context.Context, principal models.Principal, facultyID string) (*DepartmentStudents, error) {
	faculty, err := s.authorize(ctx, principal, facultyID)
	if err != nil {
		return nil, err
	}

	students, err := s.milestones.DistinctStudentsByDepartment(ctx, faculty.Department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department students")
	}
	return &DepartmentStudents{FacultyID: facultyID, Department: faculty.Department, Students: students}, nil
}

// DepartmentMilestones returns every milestone in the faculty member's
// department.
func (s *FacultyService) DepartmentMilestones(ctx context.Context, principal models.Principal, facultyID string) (*DepartmentMilestones, error) {
	faculty, err := s.authorize(ctx, principal, facultyID)
	if err != nil {
		return nil, err
	}

	milestones, err := s.milestones.ListByDepartment(ctx, faculty.Department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department milestones")
	}
	return &DepartmentMilestones{FacultyID: facultyID, Department: faculty.Department, Milestones: milestones}, nil
}

// DepartmentProgress returns the full nested hierarchy for each student in
// the department, restricted to milestones within that department.
func (s *FacultyService) DepartmentProgress(ctx context.Context, principal models.Principal, facultyID string) (*models.DepartmentProgress, error) {
	faculty, err := s.authorize(ctx, principal, facultyID)
	if err != nil {
		return nil, err
	}

	students, err := s.milestones.DistinctStudentsByDepartment(ctx, faculty.Department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department students")
	}

	result := &models.DepartmentProgress{
		FacultyID:  facultyID,
		Department: faculty.Department,
		Students:   make([]models.StudentProgress, 0, len(students)),
	}
	for _, student := range students {
		tree, err := s.progress.AssembleTree(ctx, student.StudentID)
		if err != nil {
			return nil, err
		}
		filtered := models.StudentProgress{StudentID: student.StudentID, Milestones: make([]models.MilestoneNode, 0, len(tree.Milestones))}
		for _, node := range tree.Milestones {
			if node.Department == faculty.Department {
				filtered.Milestones = append(filtered.Milestones, node)
			}
		}
		result.Students = append(result.Students, filtered)
	}
	return result, nil
}

// authorize verifies the requester is faculty querying their own
// department and resolves the faculty row.
func (s *FacultyService) authorize(ctx context.Context, principal models.Principal, facultyID string) (*models.Faculty, error) {
	if !principal.IsFaculty() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty can access this resource")
	}
	if principal.ID != facultyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "faculty can only view their own department")
	}

	faculty, err := s.faculty.FindByID(ctx, facultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return faculty, nil
}
