package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
)

type progressRepository interface {
	MilestonesByStudent(ctx context.Context, studentID string) ([]models.Milestone, error)
	StagesByStudent(ctx context.Context, studentID string) ([]models.Stage, error)
	TasksByStudent(ctx context.Context, studentID string) ([]models.Task, error)
	SubtasksByStudent(ctx context.Context, studentID string) ([]models.Subtask, error)
	MilestoneCounts(ctx context.Context, studentID string) ([]models.StatusCount, error)
	StageCounts(ctx context.Context, studentID string) ([]models.StatusCount, error)
	TaskCounts(ctx context.Context, studentID string) ([]models.StatusCount, error)
	SubtaskCounts(ctx context.Context, studentID string) ([]models.StatusCount, error)
}

// ProgressService builds the nested hierarchy view and the cross-tree
// status aggregation for a student.
type ProgressService struct {
	repo   progressRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewProgressService constructs the progress service.
func NewProgressService(repo progressRepository, cache *CacheService, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{repo: repo, cache: cache, logger: logger}
}

// FullProgress returns the student's milestones with stages, tasks and
// subtasks embedded, every level ordered by primary key ascending.
func (s *ProgressService) FullProgress(ctx context.Context, principal models.Principal, studentID string) (*models.StudentProgress, error) {
	if err := s.authorize(ctx, principal, studentID); err != nil {
		return nil, err
	}

	key := "progress:" + studentID + ":tree"
	cached := &models.StudentProgress{}
	if hit, _ := s.cache.Get(ctx, key, cached); hit {
		return cached, nil
	}

	progress, err := s.assemble(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, progress, 0); err != nil {
		s.logger.Warn("progress cache set failed", zap.String("student_id", studentID), zap.Error(err))
	}
	return progress, nil
}

// Summary returns per-level totals grouped by status for every entity
// transitively owned by the student.
func (s *ProgressService) Summary(ctx context.Context, principal models.Principal, studentID string) (*models.ProgressSummary, error) {
	if err := s.authorize(ctx, principal, studentID); err != nil {
		return nil, err
	}

	key := "progress:" + studentID + ":summary"
	cached := &models.ProgressSummary{}
	if hit, _ := s.cache.Get(ctx, key, cached); hit {
		return cached, nil
	}

	summary := &models.ProgressSummary{StudentID: studentID}
	levels := []struct {
		dest  *models.StatusSummary
		fetch func(context.Context, string) ([]models.StatusCount, error)
	}{
		{&summary.Milestones, s.repo.MilestoneCounts},
		{&summary.Stages, s.repo.StageCounts},
		{&summary.Tasks, s.repo.TaskCounts},
		{&summary.Subtasks, s.repo.SubtaskCounts},
	}
	for _, level := range levels {
		counts, err := level.fetch(ctx, studentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate progress")
		}
		*level.dest = summarize(counts)
	}

	if err := s.cache.Set(ctx, key, summary, 0); err != nil {
		s.logger.Warn("progress cache set failed", zap.String("student_id", studentID), zap.Error(err))
	}
	return summary, nil
}

// authorize admits the owning student, or faculty with at least one of
// the student's milestones in their department. Department membership is
// only derivable through milestones, so a student with none is visible to
// no faculty here.
func (s *ProgressService) authorize(ctx context.Context, principal models.Principal, studentID string) error {
	if principal.IsStudent() {
		if !principal.OwnsStudent(studentID) {
			return appErrors.Clone(appErrors.ErrForbidden, "students can only view their own progress")
		}
		return nil
	}
	milestones, err := s.repo.MilestonesByStudent(ctx, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	for _, m := range milestones {
		if principal.InDepartment(m.Department) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "faculty can only view students in their department")
}

// AssembleTree builds the nested view without any policy gate, for callers
// that have already authorized the read.
func (s *ProgressService) AssembleTree(ctx context.Context, studentID string) (*models.StudentProgress, error) {
	return s.assemble(ctx, studentID)
}

func (s *ProgressService) assemble(ctx context.Context, studentID string) (*models.StudentProgress, error) {
	milestones, err := s.repo.MilestonesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	stages, err := s.repo.StagesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	tasks, err := s.repo.TasksByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	subtasks, err := s.repo.SubtasksByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}

	taskNodes := make(map[int64]*models.TaskNode, len(tasks))
	taskOrder := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		taskNodes[t.TaskID] = &models.TaskNode{Task: t, Subtasks: []models.Subtask{}}
		taskOrder = append(taskOrder, t.TaskID)
	}
	for _, sb := range subtasks {
		if node, ok := taskNodes[sb.TaskID]; ok {
			node.Subtasks = append(node.Subtasks, sb)
		}
	}

	stageNodes := make(map[int64]*models.StageNode, len(stages))
	stageOrder := make([]int64, 0, len(stages))
	for _, st := range stages {
		stageNodes[st.StageID] = &models.StageNode{Stage: st, Tasks: []models.TaskNode{}}
		stageOrder = append(stageOrder, st.StageID)
	}
	for _, id := range taskOrder {
		node := taskNodes[id]
		if parent, ok := stageNodes[node.StageID]; ok {
			parent.Tasks = append(parent.Tasks, *node)
		}
	}

	progress := &models.StudentProgress{StudentID: studentID, Milestones: make([]models.MilestoneNode, 0, len(milestones))}
	milestoneNodes := make(map[int64]*models.MilestoneNode, len(milestones))
	for i := range milestones {
		m := milestones[i]
		node := models.MilestoneNode{Milestone: m, Stages: []models.StageNode{}}
		progress.Milestones = append(progress.Milestones, node)
		milestoneNodes[m.MilestoneID] = &progress.Milestones[len(progress.Milestones)-1]
	}
	for _, id := range stageOrder {
		node := stageNodes[id]
		if parent, ok := milestoneNodes[node.MilestoneID]; ok {
			parent.Stages = append(parent.Stages, *node)
		}
	}

	return progress, nil
}

func summarize(counts []models.StatusCount) models.StatusSummary {
	summary := models.StatusSummary{ByStatus: make(map[string]int, len(counts))}
	for _, c := range counts {
		summary.ByStatus[c.Status] = c.Count
		summary.Total += c.Count
	}
	return summary
}
