package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
)

type mockMilestoneRepo struct {
	milestones map[int64]*models.Milestone
	nextID     int64
	deleted    []int64
}

func (m *mockMilestoneRepo) Create(ctx context.Context, ms *models.Milestone) error {
	if m.milestones == nil {
		m.milestones = make(map[int64]*models.Milestone)
	}
	m.nextID++
	ms.MilestoneID = m.nextID
	ms.CreatedAt = time.Now()
	stored := *ms
	m.milestones[ms.MilestoneID] = &stored
	return nil
}

func (m *mockMilestoneRepo) FindByID(ctx context.Context, id int64) (*models.Milestone, error) {
	ms, ok := m.milestones[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *ms
	return &copied, nil
}

func (m *mockMilestoneRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Milestone, error) {
	var list []models.Milestone
	for i := int64(1); i <= m.nextID; i++ {
		if ms, ok := m.milestones[i]; ok && ms.StudentID == studentID {
			list = append(list, *ms)
		}
	}
	return list, nil
}

func (m *mockMilestoneRepo) UpdateStatus(ctx context.Context, id int64, status models.MilestoneStatus) error {
	ms, ok := m.milestones[id]
	if !ok {
		return sql.ErrNoRows
	}
	ms.Status = status
	return nil
}

func (m *mockMilestoneRepo) SetFreeze(ctx context.Context, id int64, facultyID *string, at *time.Time) error {
	ms, ok := m.milestones[id]
	if !ok {
		return sql.ErrNoRows
	}
	ms.IsFrozen = facultyID != nil
	ms.FrozenByFacultyID = facultyID
	ms.FrozenAt = at
	return nil
}

func (m *mockMilestoneRepo) Approve(ctx context.Context, id int64, facultyID string, at time.Time) error {
	ms, ok := m.milestones[id]
	if !ok {
		return sql.ErrNoRows
	}
	ms.Status = models.MilestoneCompleted
	ms.ApprovedByFacultyID = &facultyID
	ms.ApprovedAt = &at
	return nil
}

func (m *mockMilestoneRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.milestones[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.milestones, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockStudentDirectory struct {
	ids map[string]bool
}

func (m *mockStudentDirectory) Exists(ctx context.Context, id string) (bool, error) {
	return m.ids[id], nil
}

type mockStageLister struct {
	stages map[int64][]models.Stage
}

func (m *mockStageLister) ListByMilestone(ctx context.Context, milestoneID int64) ([]models.Stage, error) {
	return m.stages[milestoneID], nil
}

func facultyPrincipal(id, dept string) models.Principal {
	return models.Principal{ID: id, Role: models.RoleFaculty, Department: dept}
}

func studentPrincipal(id string) models.Principal {
	return models.Principal{ID: id, Role: models.RoleStudent}
}

func newMilestoneServiceForTest(repo *mockMilestoneRepo, students *mockStudentDirectory, stages *mockStageLister) *MilestoneService {
	if students == nil {
		students = &mockStudentDirectory{ids: map[string]bool{"20240001": true}}
	}
	if stages == nil {
		stages = &mockStageLister{}
	}
	return NewMilestoneService(repo, students, stages, nil, nil, nil)
}

func TestMilestoneCreateCopiesDepartmentFromFaculty(t *testing.T) {
	repo := &mockMilestoneRepo{}
	svc := newMilestoneServiceForTest(repo, nil, nil)

	milestone, err := svc.Create(context.Background(), facultyPrincipal("1234567", "Physics"), models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.NoError(t, err)
	assert.Equal(t, "Physics", milestone.Department)
	assert.Equal(t, models.MilestoneLocked, milestone.Status)
	assert.False(t, milestone.IsFrozen)
}

func TestMilestoneCreateRejectsStudents(t *testing.T) {
	svc := newMilestoneServiceForTest(&mockMilestoneRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), studentPrincipal("20240001"), models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMilestoneCreateUnknownStudent(t *testing.T) {
	svc := newMilestoneServiceForTest(&mockMilestoneRepo{}, &mockStudentDirectory{ids: map[string]bool{}}, nil)

	_, err := svc.Create(context.Background(), facultyPrincipal("1234567", "Physics"), models.CreateMilestoneRequest{StudentID: "20249999", Name: "Thesis Proposal"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMilestoneListEmbedsStagesAndScopesByDepartment(t *testing.T) {
	repo := &mockMilestoneRepo{}
	svc := newMilestoneServiceForTest(repo, nil, &mockStageLister{stages: map[int64][]models.Stage{
		1: {{StageID: 10, MilestoneID: 1, Name: "Literature Review", Status: models.StepLocked}},
	}})

	_, err := svc.Create(context.Background(), facultyPrincipal("1234567", "Physics"), models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), facultyPrincipal("7654321", "Chemistry"), models.CreateMilestoneRequest{StudentID: "20240001", Name: "Lab Rotation"})
	require.NoError(t, err)

	// The student sees both milestones.
	nodes, err := svc.ListByStudent(context.Background(), studentPrincipal("20240001"), "20240001")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Len(t, nodes[0].Stages, 1)
	assert.Equal(t, "Literature Review", nodes[0].Stages[0].Name)

	// Faculty only see milestones in their own department.
	nodes, err = svc.ListByStudent(context.Background(), facultyPrincipal("1234567", "Physics"), "20240001")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Thesis Proposal", nodes[0].Name)
}

func TestMilestoneListStudentCannotViewOthers(t *testing.T) {
	svc := newMilestoneServiceForTest(&mockMilestoneRepo{}, nil, nil)

	_, err := svc.ListByStudent(context.Background(), studentPrincipal("20240001"), "20240002")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMilestoneStatusStudentRestrictions(t *testing.T) {
	repo := &mockMilestoneRepo{}
	svc := newMilestoneServiceForTest(repo, nil, nil)
	milestone, err := svc.Create(context.Background(), facultyPrincipal("1234567", "Physics"), models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.NoError(t, err)

	owner := studentPrincipal("20240001")

	for _, forbidden := range []models.MilestoneStatus{models.MilestoneOpen, models.MilestoneCompleted} {
		_, err := svc.UpdateStatus(context.Background(), owner, milestone.MilestoneID, string(forbidden))
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	}

	updated, err := svc.UpdateStatus(context.Background(), owner, milestone.MilestoneID, string(models.MilestonePendingApproval))
	require.NoError(t, err)
	assert.Equal(t, models.MilestonePendingApproval, updated.Status)
}

func TestMilestoneStatusFacultyMaySetAnyValue(t *testing.T) {
	repo := &mockMilestoneRepo{}
	svc := newMilestoneServiceForTest(repo, nil, nil)
	faculty := facultyPrincipal("1234567", "Physics")
	milestone, err := svc.Create(context.Background(), faculty, models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.NoError(t, err)

	for _, status := range models.MilestoneStatuses {
		updated, err := svc.UpdateStatus(context.Background(), faculty, milestone.MilestoneID, string(status))
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestMilestoneStatusRejectsUnknownValue(t *testing.T) {
	repo := &mockMilestoneRepo{}
	svc := newMilestoneServiceForTest(repo, nil, nil)
	milestone, err := svc.Create(context.Background(), facultyPrincipal("1234567", "Physics"), models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), facultyPrincipal("1234567", "Physics"), milestone.MilestoneID, "Done")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMilestoneStatusNotFoundBeforeForbidden(t *testing.T) {
	svc := newMilestoneServiceForTest(&mockMilestoneRepo{}, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), studentPrincipal("20240002"), 99, string(models.MilestoneInProgress))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMilestoneFrozenRejectsStudentWrites(t *testing.T) {
	repo := &mockMilestoneRepo{}
	svc := newMilestoneServiceForTest(repo, nil, nil)
	faculty := facultyPrincipal("1234567", "Physics")
	milestone, err := svc.Create(context.Background(), faculty, models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.NoError(t, err)

	_, err = svc.Freeze(context.Background(), faculty, milestone.MilestoneID, true)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), studentPrincipal("20240001"), milestone.MilestoneID, string(models.MilestoneInProgress))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Faculty writes still go through.
	updated, err := svc.UpdateStatus(context.Background(), faculty, milestone.MilestoneID, string(models.MilestoneInProgress))
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneInProgress, updated.Status)
}

func TestMilestoneFreezeStampsActorAndTimeTogether(t *testing.T) {
	repo := &mockMilestoneRepo{}
	svc := newMilestoneServiceForTest(repo, nil, nil)
	faculty := facultyPrincipal("1234567", "Physics")
	milestone, err := svc.Create(context.Background(), faculty, models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.NoError(t, err)

	frozen, err := svc.Freeze(context.Background(), faculty, milestone.MilestoneID, true)
	require.NoError(t, err)
	assert.True(t, frozen.IsFrozen)
	require.NotNil(t, frozen.FrozenByFacultyID)
	require.NotNil(t, frozen.FrozenAt)
	assert.Equal(t, "1234567", *frozen.FrozenByFacultyID)

	thawed, err := svc.Freeze(context.Background(), faculty, milestone.MilestoneID, false)
	require.NoError(t, err)
	assert.False(t, thawed.IsFrozen)
	assert.Nil(t, thawed.FrozenByFacultyID)
	assert.Nil(t, thawed.FrozenAt)
}

func TestMilestoneFreezeRejectsStudents(t *testing.T) {
	repo := &mockMilestoneRepo{}
	svc := newMilestoneServiceForTest(repo, nil, nil)
	milestone, err := svc.Create(context.Background(), facultyPrincipal("1234567", "Physics"), models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.NoError(t, err)

	_, err = svc.Freeze(context.Background(), studentPrincipal("20240001"), milestone.MilestoneID, true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMilestoneApproveRequiresPendingApproval(t *testing.T) {
	repo := &mockMilestoneRepo{}
	svc := newMilestoneServiceForTest(repo, nil, nil)
	faculty := facultyPrincipal("1234567", "Physics")
	milestone, err := svc.Create(context.Background(), faculty, models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.NoError(t, err)

	// Locked milestone cannot be approved.
	_, err = svc.Approve(context.Background(), faculty, milestone.MilestoneID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateStatus(context.Background(), faculty, milestone.MilestoneID, string(models.MilestonePendingApproval))
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), faculty, milestone.MilestoneID)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneCompleted, approved.Status)
	require.NotNil(t, approved.ApprovedByFacultyID)
	assert.Equal(t, "1234567", *approved.ApprovedByFacultyID)
	require.NotNil(t, approved.ApprovedAt)

	// A second approve conflicts: the milestone is already Completed.
	_, err = svc.Approve(context.Background(), faculty, milestone.MilestoneID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestMilestoneDelete(t *testing.T) {
	repo := &mockMilestoneRepo{}
	svc := newMilestoneServiceForTest(repo, nil, nil)
	faculty := facultyPrincipal("1234567", "Physics")
	milestone, err := svc.Create(context.Background(), faculty, models.CreateMilestoneRequest{StudentID: "20240001", Name: "Thesis Proposal"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), studentPrincipal("20240001"), milestone.MilestoneID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), faculty, milestone.MilestoneID))
	assert.Equal(t, []int64{milestone.MilestoneID}, repo.deleted)

	err = svc.Delete(context.Background(), faculty, milestone.MilestoneID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
