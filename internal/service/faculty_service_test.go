package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
)

type mockFacultyDirectory struct {
	faculty map[string]*models.Faculty
}

func (m *mockFacultyDirectory) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	f, ok := m.faculty[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return f, nil
}

type mockDepartmentMilestoneRepo struct {
	milestones []models.Milestone
	students   map[string]models.Student
}

func (m *mockDepartmentMilestoneRepo) ListByDepartment(ctx context.Context, department string) ([]models.Milestone, error) {
	var list []models.Milestone
	for _, ms := range m.milestones {
		if ms.Department == department {
			list = append(list, ms)
		}
	}
	return list, nil
}

func (m *mockDepartmentMilestoneRepo) DistinctStudentsByDepartment(ctx context.Context, department string) ([]models.Student, error) {
	seen := make(map[string]bool)
	var students []models.Student
	for _, ms := range m.milestones {
		if ms.Department != department || seen[ms.StudentID] {
			continue
		}
		seen[ms.StudentID] = true
		students = append(students, m.students[ms.StudentID])
	}
	return students, nil
}

type stubAssembler struct {
	trees map[string]*models.StudentProgress
}

func (s *stubAssembler) AssembleTree(ctx context.Context, studentID string) (*models.StudentProgress, error) {
	if tree, ok := s.trees[studentID]; ok {
		return tree, nil
	}
	return &models.StudentProgress{StudentID: studentID, Milestones: []models.MilestoneNode{}}, nil
}

func newFacultyFixture() *FacultyService {
	directory := &mockFacultyDirectory{faculty: map[string]*models.Faculty{
		"1234567": {FacultyID: "1234567", Name: "Dr. Reyes", Department: "Physics"},
	}}
	milestones := &mockDepartmentMilestoneRepo{
		milestones: []models.Milestone{
			{MilestoneID: 1, StudentID: "20240001", Department: "Physics", Name: "Thesis Proposal"},
			{MilestoneID: 2, StudentID: "20240001", Department: "Physics", Name: "Qualifying Exam"},
			{MilestoneID: 3, StudentID: "20240002", Department: "Physics", Name: "Thesis Proposal"},
			{MilestoneID: 4, StudentID: "20240003", Department: "Chemistry", Name: "Lab Rotation"},
		},
		students: map[string]models.Student{
			"20240001": {StudentID: "20240001", Name: "Ana"},
			"20240002": {StudentID: "20240002", Name: "Ben"},
			"20240003": {StudentID: "20240003", Name: "Cruz"},
		},
	}
	assembler := &stubAssembler{trees: map[string]*models.StudentProgress{
		"20240001": {StudentID: "20240001", Milestones: []models.MilestoneNode{
			{Milestone: models.Milestone{MilestoneID: 1, StudentID: "20240001", Department: "Physics"}},
			{Milestone: models.Milestone{MilestoneID: 5, StudentID: "20240001", Department: "Chemistry"}},
		}},
	}}
	return NewFacultyService(directory, milestones, assembler, nil)
}

func TestFacultyStudentsAreDistinct(t *testing.T) {
	svc := newFacultyFixture()

	result, err := svc.StudentsInDepartment(context.Background(), facultyPrincipal("1234567", "Physics"), "1234567")
	require.NoError(t, err)
	assert.Equal(t, "Physics", result.Department)
	// Student 20240001 holds two Physics milestones but appears once.
	require.Len(t, result.Students, 2)
	assert.Equal(t, "20240001", result.Students[0].StudentID)
	assert.Equal(t, "20240002", result.Students[1].StudentID)
}

func TestFacultySelfOnly(t *testing.T) {
	svc := newFacultyFixture()

	_, err := svc.StudentsInDepartment(context.Background(), facultyPrincipal("7654321", "Physics"), "1234567")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.DepartmentMilestones(context.Background(), studentPrincipal("20240001"), "20240001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestFacultyUnknownIdIs404(t *testing.T) {
	svc := newFacultyFixture()

	_, err := svc.DepartmentMilestones(context.Background(), facultyPrincipal("9999999", "Physics"), "9999999")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFacultyDepartmentMilestones(t *testing.T) {
	svc := newFacultyFixture()

	result, err := svc.DepartmentMilestones(context.Background(), facultyPrincipal("1234567", "Physics"), "1234567")
	require.NoError(t, err)
	require.Len(t, result.Milestones, 3)
	for _, m := range result.Milestones {
		assert.Equal(t, "Physics", m.Department)
	}
}

func TestFacultyDepartmentProgressFiltersForeignMilestones(t *testing.T) {
	svc := newFacultyFixture()

	result, err := svc.DepartmentProgress(context.Background(), facultyPrincipal("1234567", "Physics"), "1234567")
	require.NoError(t, err)
	require.Len(t, result.Students, 2)

	// The Chemistry milestone in the student's tree is filtered out.
	first := result.Students[0]
	assert.Equal(t, "20240001", first.StudentID)
	require.Len(t, first.Milestones, 1)
	assert.Equal(t, int64(1), first.Milestones[0].MilestoneID)
}
