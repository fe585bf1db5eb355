package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
)

type mockProgressRepo struct {
	milestones []models.Milestone
	stages     []models.Stage
	tasks      []models.Task
	subtasks   []models.Subtask
}

func (m *mockProgressRepo) MilestonesByStudent(ctx context.Context, studentID string) ([]models.Milestone, error) {
	return m.milestones, nil
}

func (m *mockProgressRepo) StagesByStudent(ctx context.Context, studentID string) ([]models.Stage, error) {
	return m.stages, nil
}

func (m *mockProgressRepo) TasksByStudent(ctx context.Context, studentID string) ([]models.Task, error) {
	return m.tasks, nil
}

func (m *mockProgressRepo) SubtasksByStudent(ctx context.Context, studentID string) ([]models.Subtask, error) {
	return m.subtasks, nil
}

func (m *mockProgressRepo) MilestoneCounts(ctx context.Context, studentID string) ([]models.StatusCount, error) {
	return statusCounts(func() []string {
		v := make([]string, 0, len(m.milestones))
		for _, x := range m.milestones {
			v = append(v, string(x.Status))
		}
		return v
	}()), nil
}

func (m *mockProgressRepo) StageCounts(ctx context.Context, studentID string) ([]models.StatusCount, error) {
	v := make([]string, 0, len(m.stages))
	for _, x := range m.stages {
		v = append(v, string(x.Status))
	}
	return statusCounts(v), nil
}

func (m *mockProgressRepo) TaskCounts(ctx context.Context, studentID string) ([]models.StatusCount, error) {
	v := make([]string, 0, len(m.tasks))
	for _, x := range m.tasks {
		v = append(v, string(x.Status))
	}
	return statusCounts(v), nil
}

func (m *mockProgressRepo) SubtaskCounts(ctx context.Context, studentID string) ([]models.StatusCount, error) {
	v := make([]string, 0, len(m.subtasks))
	for _, x := range m.subtasks {
		v = append(v, string(x.Status))
	}
	return statusCounts(v), nil
}

func statusCounts(statuses []string) []models.StatusCount {
	grouped := make(map[string]int)
	order := make([]string, 0)
	for _, s := range statuses {
		if _, ok := grouped[s]; !ok {
			order = append(order, s)
		}
		grouped[s]++
	}
	counts := make([]models.StatusCount, 0, len(order))
	for _, s := range order {
		counts = append(counts, models.StatusCount{Status: s, Count: grouped[s]})
	}
	return counts
}

func newProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{
		milestones: []models.Milestone{
			{MilestoneID: 1, StudentID: "20240001", Name: "Thesis Proposal", Department: "Physics", Status: models.MilestoneInProgress},
			{MilestoneID: 2, StudentID: "20240001", Name: "Qualifying Exam", Department: "Physics", Status: models.MilestoneLocked},
		},
		stages: []models.Stage{
			{StageID: 10, MilestoneID: 1, Name: "Literature Review", Status: models.StepCompleted},
			{StageID: 11, MilestoneID: 1, Name: "Draft", Status: models.StepInProgress},
		},
		tasks: []models.Task{
			{TaskID: 100, StageID: 10, Name: "Survey papers", Status: models.StepCompleted},
		},
		subtasks: []models.Subtask{
			{SubtaskID: 1000, TaskID: 100, Name: "Collect citations", Status: models.StepCompleted},
			{SubtaskID: 1001, TaskID: 100, Name: "Annotate", Status: models.StepInProgress},
		},
	}
}

func TestProgressFullTreeNesting(t *testing.T) {
	svc := NewProgressService(newProgressRepo(), nil, nil)

	tree, err := svc.FullProgress(context.Background(), studentPrincipal("20240001"), "20240001")
	require.NoError(t, err)
	require.Len(t, tree.Milestones, 2)

	first := tree.Milestones[0]
	assert.Equal(t, int64(1), first.MilestoneID)
	require.Len(t, first.Stages, 2)
	assert.Equal(t, int64(10), first.Stages[0].StageID)
	require.Len(t, first.Stages[0].Tasks, 1)
	require.Len(t, first.Stages[0].Tasks[0].Subtasks, 2)
	assert.Equal(t, int64(1000), first.Stages[0].Tasks[0].Subtasks[0].SubtaskID)

	// Milestone without stages carries an empty slice, not null.
	second := tree.Milestones[1]
	assert.NotNil(t, second.Stages)
	assert.Len(t, second.Stages, 0)
}

func TestProgressStudentCannotViewOthers(t *testing.T) {
	svc := NewProgressService(newProgressRepo(), nil, nil)

	_, err := svc.FullProgress(context.Background(), studentPrincipal("20240002"), "20240001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Summary(context.Background(), studentPrincipal("20240002"), "20240001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProgressSameDepartmentFacultyMayView(t *testing.T) {
	svc := NewProgressService(newProgressRepo(), nil, nil)

	tree, err := svc.FullProgress(context.Background(), facultyPrincipal("1234567", "Physics"), "20240001")
	require.NoError(t, err)
	assert.Equal(t, "20240001", tree.StudentID)
}

func TestProgressForeignDepartmentFacultyForbidden(t *testing.T) {
	svc := NewProgressService(newProgressRepo(), nil, nil)
	outsider := facultyPrincipal("7654321", "Philosophy")

	_, err := svc.FullProgress(context.Background(), outsider, "20240001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Summary(context.Background(), outsider, "20240001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProgressFacultyDeniedWhenStudentHasNoMilestones(t *testing.T) {
	svc := NewProgressService(&mockProgressRepo{}, nil, nil)

	_, err := svc.FullProgress(context.Background(), facultyPrincipal("1234567", "Physics"), "20249999")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProgressSummaryCountsSumToTotals(t *testing.T) {
	svc := NewProgressService(newProgressRepo(), nil, nil)

	summary, err := svc.Summary(context.Background(), studentPrincipal("20240001"), "20240001")
	require.NoError(t, err)

	for _, level := range []models.StatusSummary{summary.Milestones, summary.Stages, summary.Tasks, summary.Subtasks} {
		sum := 0
		for _, n := range level.ByStatus {
			sum += n
		}
		assert.Equal(t, level.Total, sum)
	}

	assert.Equal(t, 2, summary.Milestones.Total)
	assert.Equal(t, 1, summary.Milestones.ByStatus[string(models.MilestoneInProgress)])
	assert.Equal(t, 2, summary.Subtasks.Total)
	assert.Equal(t, 1, summary.Subtasks.ByStatus[string(models.StepInProgress)])
}

type recordingCacheRepo struct {
	gets       int
	sets       int
	lastSetKey string
}

func (r *recordingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.gets++
	return appErrors.ErrCacheMiss
}

func (r *recordingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	r.sets++
	r.lastSetKey = key
	return nil
}

func (r *recordingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return nil
}

func TestProgressUsesCacheWhenEnabled(t *testing.T) {
	repo := newProgressRepo()
	cacheRepo := &recordingCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	svc := NewProgressService(repo, cache, nil)

	_, err := svc.Summary(context.Background(), studentPrincipal("20240001"), "20240001")
	require.NoError(t, err)
	assert.Equal(t, 1, cacheRepo.gets)
	assert.Equal(t, 1, cacheRepo.sets)
	assert.Contains(t, cacheRepo.lastSetKey, "progress:20240001:summary")
}
