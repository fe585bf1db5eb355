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

type mockStageRepo struct {
	stages  map[int64]*models.StageContext
	nextID  int64
	deleted []int64
}

func (m *mockStageRepo) Create(ctx context.Context, st *models.Stage) error {
	if m.stages == nil {
		m.stages = make(map[int64]*models.StageContext)
	}
	m.nextID++
	st.StageID = m.nextID
	st.CreatedAt = time.Now()
	m.stages[st.StageID] = &models.StageContext{Stage: *st}
	return nil
}

func (m *mockStageRepo) FindContext(ctx context.Context, id int64) (*models.StageContext, error) {
	sc, ok := m.stages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *sc
	return &copied, nil
}

func (m *mockStageRepo) ListByMilestone(ctx context.Context, milestoneID int64) ([]models.Stage, error) {
	var list []models.Stage
	for i := int64(1); i <= m.nextID; i++ {
		if sc, ok := m.stages[i]; ok && sc.MilestoneID == milestoneID {
			list = append(list, sc.Stage)
		}
	}
	return list, nil
}

func (m *mockStageRepo) UpdateStatus(ctx context.Context, id int64, status models.StepStatus) error {
	sc, ok := m.stages[id]
	if !ok {
		return sql.ErrNoRows
	}
	sc.Status = status
	return nil
}

func (m *mockStageRepo) SetFreeze(ctx context.Context, id int64, facultyID *string, at *time.Time) error {
	sc, ok := m.stages[id]
	if !ok {
		return sql.ErrNoRows
	}
	sc.IsFrozen = facultyID != nil
	sc.FrozenByFacultyID = facultyID
	sc.FrozenAt = at
	return nil
}

func (m *mockStageRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.stages[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.stages, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// seed attaches ownership context that the real repository resolves by
// joining the parent milestone.
func (m *mockStageRepo) seed(stageID int64, studentID, department string) {
	m.stages[stageID].StudentID = studentID
	m.stages[stageID].Department = department
}

type mockMilestoneReader struct {
	milestones map[int64]*models.Milestone
}

func (m *mockMilestoneReader) FindByID(ctx context.Context, id int64) (*models.Milestone, error) {
	ms, ok := m.milestones[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return ms, nil
}

func newStageFixture() (*StageService, *mockStageRepo) {
	repo := &mockStageRepo{stages: make(map[int64]*models.StageContext)}
	milestones := &mockMilestoneReader{milestones: map[int64]*models.Milestone{
		1: {MilestoneID: 1, StudentID: "20240001", Department: "Physics", Status: models.MilestoneOpen},
	}}
	return NewStageService(repo, milestones, nil, nil, nil), repo
}

func TestStageCreateRequiresSameDepartment(t *testing.T) {
	svc, _ := newStageFixture()

	stage, err := svc.Create(context.Background(), facultyPrincipal("1234567", "Physics"), models.CreateStageRequest{MilestoneID: 1, Name: "Literature Review"})
	require.NoError(t, err)
	assert.Equal(t, models.StepLocked, stage.Status)

	_, err = svc.Create(context.Background(), facultyPrincipal("7654321", "Chemistry"), models.CreateStageRequest{MilestoneID: 1, Name: "Synthesis"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStageCreateMissingMilestoneIs404(t *testing.T) {
	svc, _ := newStageFixture()

	_, err := svc.Create(context.Background(), facultyPrincipal("7654321", "Chemistry"), models.CreateStageRequest{MilestoneID: 42, Name: "Synthesis"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStageCreateRejectsStudents(t *testing.T) {
	svc, _ := newStageFixture()

	_, err := svc.Create(context.Background(), studentPrincipal("20240001"), models.CreateStageRequest{MilestoneID: 1, Name: "Literature Review"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStageListScopedToOwnerOrDepartment(t *testing.T) {
	svc, _ := newStageFixture()
	faculty := facultyPrincipal("1234567", "Physics")
	_, err := svc.Create(context.Background(), faculty, models.CreateStageRequest{MilestoneID: 1, Name: "Literature Review"})
	require.NoError(t, err)

	stages, err := svc.ListByMilestone(context.Background(), studentPrincipal("20240001"), 1)
	require.NoError(t, err)
	assert.Len(t, stages, 1)

	stages, err = svc.ListByMilestone(context.Background(), faculty, 1)
	require.NoError(t, err)
	assert.Len(t, stages, 1)

	_, err = svc.ListByMilestone(context.Background(), studentPrincipal("20240002"), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.ListByMilestone(context.Background(), facultyPrincipal("7654321", "Chemistry"), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStageStatusIsStudentOnly(t *testing.T) {
	svc, repo := newStageFixture()
	faculty := facultyPrincipal("1234567", "Physics")
	stage, err := svc.Create(context.Background(), faculty, models.CreateStageRequest{MilestoneID: 1, Name: "Literature Review"})
	require.NoError(t, err)
	repo.seed(stage.StageID, "20240001", "Physics")

	_, err = svc.UpdateStatus(context.Background(), faculty, stage.StageID, string(models.StepInProgress))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	updated, err := svc.UpdateStatus(context.Background(), studentPrincipal("20240001"), stage.StageID, string(models.StepInProgress))
	require.NoError(t, err)
	assert.Equal(t, models.StepInProgress, updated.Status)
}

func TestStageStatusAllowedValues(t *testing.T) {
	svc, repo := newStageFixture()
	stage, err := svc.Create(context.Background(), facultyPrincipal("1234567", "Physics"), models.CreateStageRequest{MilestoneID: 1, Name: "Literature Review"})
	require.NoError(t, err)
	repo.seed(stage.StageID, "20240001", "Physics")
	owner := studentPrincipal("20240001")

	// Locked is a default, never a requested transition.
	for _, bad := range []string{string(models.StepLocked), "Pending Approval", "Done"} {
		_, err := svc.UpdateStatus(context.Background(), owner, stage.StageID, bad)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}

	updated, err := svc.UpdateStatus(context.Background(), owner, stage.StageID, string(models.StepCompleted))
	require.NoError(t, err)
	assert.Equal(t, models.StepCompleted, updated.Status)
}

func TestStageStatusFrozenRejectsStudent(t *testing.T) {
	svc, repo := newStageFixture()
	faculty := facultyPrincipal("1234567", "Physics")
	stage, err := svc.Create(context.Background(), faculty, models.CreateStageRequest{MilestoneID: 1, Name: "Literature Review"})
	require.NoError(t, err)
	repo.seed(stage.StageID, "20240001", "Physics")

	frozen, err := svc.Freeze(context.Background(), faculty, stage.StageID, true)
	require.NoError(t, err)
	assert.True(t, frozen.IsFrozen)
	require.NotNil(t, frozen.FrozenByFacultyID)
	require.NotNil(t, frozen.FrozenAt)

	_, err = svc.UpdateStatus(context.Background(), studentPrincipal("20240001"), stage.StageID, string(models.StepInProgress))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStageFreezeAndDeleteScopedByDepartment(t *testing.T) {
	svc, repo := newStageFixture()
	stage, err := svc.Create(context.Background(), facultyPrincipal("1234567", "Physics"), models.CreateStageRequest{MilestoneID: 1, Name: "Literature Review"})
	require.NoError(t, err)
	repo.seed(stage.StageID, "20240001", "Physics")
	outsider := facultyPrincipal("7654321", "Chemistry")

	_, err = svc.Freeze(context.Background(), outsider, stage.StageID, true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), outsider, stage.StageID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), facultyPrincipal("1234567", "Physics"), stage.StageID))
	assert.Equal(t, []int64{stage.StageID}, repo.deleted)
}

func TestStageMissingIs404BeforeOwnership(t *testing.T) {
	svc, _ := newStageFixture()

	_, err := svc.UpdateStatus(context.Background(), studentPrincipal("20240002"), 99, string(models.StepInProgress))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
