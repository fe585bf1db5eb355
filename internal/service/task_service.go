package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
)

type taskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	FindContext(ctx context.Context, id int64) (*models.TaskContext, error)
	ListByStage(ctx context.Context, stageID int64) ([]models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id int64) error
}

type taskStageReader interface {
	FindContext(ctx context.Context, id int64) (*models.StageContext, error)
}

// TaskService applies lifecycle and authorization rules for tasks. Tasks
// are created by the owning student and maintained by that student or
// same-department faculty.
type TaskService struct {
	repo      taskRepository
	stages    taskStageReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaskService constructs the task service.
func NewTaskService(repo taskRepository, stages taskStageReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, stages: stages, cache: cache, validator: validate, logger: logger}
}

// Create adds a task under a stage owned by the requesting student.
func (s *TaskService) Create(ctx context.Context, principal models.Principal, req models.CreateTaskRequest) (*models.Task, error) {
	if !principal.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can create tasks")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	stage, err := s.stages.FindContext(ctx, req.StageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "stage not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stage")
	}
	if !principal.OwnsStudent(stage.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only add tasks to their own stages")
	}

	task := &models.Task{
		StageID: req.StageID,
		Name:    req.Name,
		DueDate: req.DueDate,
		Status:  models.StepLocked,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}

	s.invalidateProgress(ctx, stage.StudentID)
	return task, nil
}

// ListByStage returns the tasks of a stage in creation order, visible to
// the owning student or same-department faculty.
func (s *TaskService) ListByStage(ctx context.Context, principal models.Principal, stageID int64) ([]models.Task, error) {
	stage, err := s.stages.FindContext(ctx, stageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "stage not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stage")
	}
	if principal.IsStudent() && !principal.OwnsStudent(stage.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "access denied")
	}
	if principal.IsFaculty() && !principal.InDepartment(stage.Department) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "access denied for this department")
	}

	tasks, err := s.repo.ListByStage(ctx, stageID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return tasks, nil
}

// Update edits name, due date or status. Permitted for the owning student
// or same-department faculty; status writes are restricted to the writable
// subset of the enumeration.
func (s *TaskService) Update(ctx context.Context, principal models.Principal, id int64, req models.UpdateTaskRequest) (*models.Task, error) {
	tc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutation(principal, tc); err != nil {
		return nil, err
	}

	if req.Status != nil {
		status := models.StepStatus(*req.Status)
		if !status.Writable() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid task status %q", *req.Status))
		}
		tc.Status = status
	}
	if req.Name != nil {
		tc.Name = *req.Name
	}
	if req.DueDate != nil {
		tc.DueDate = req.DueDate
	}

	if err := s.repo.Update(ctx, &tc.Task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}

	s.invalidateProgress(ctx, tc.StudentID)
	return &tc.Task, nil
}

// Delete removes a task and its subtasks.
func (s *TaskService) Delete(ctx context.Context, principal models.Principal, id int64) error {
	tc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeMutation(principal, tc); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}

	s.invalidateProgress(ctx, tc.StudentID)
	return nil
}

func (s *TaskService) authorizeMutation(principal models.Principal, tc *models.TaskContext) error {
	if principal.OwnsStudent(tc.StudentID) || principal.InDepartment(tc.Department) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "access denied")
}

func (s *TaskService) find(ctx context.Context, id int64) (*models.TaskContext, error) {
	tc, err := s.repo.FindContext(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	return tc, nil
}

func (s *TaskService) invalidateProgress(ctx context.Context, studentID string) {
	if err := s.cache.Invalidate(ctx, "progress:"+studentID+":*"); err != nil {
		s.logger.Warn("progress cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
