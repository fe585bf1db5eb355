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

type subtaskRepository interface {
	Create(ctx context.Context, s *models.Subtask) error
	FindContext(ctx context.Context, id int64) (*models.SubtaskContext, error)
	ListByTask(ctx context.Context, taskID int64) ([]models.Subtask, error)
	Update(ctx context.Context, s *models.Subtask) error
	Delete(ctx context.Context, id int64) error
}

type subtaskTaskReader interface {
	FindContext(ctx context.Context, id int64) (*models.TaskContext, error)
}

// SubtaskService applies lifecycle and authorization rules for subtasks,
// mirroring the task rules one level down.
type SubtaskService struct {
	repo      subtaskRepository
	tasks     subtaskTaskReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubtaskService constructs the subtask service.
func NewSubtaskService(repo subtaskRepository, tasks subtaskTaskReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubtaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubtaskService{repo: repo, tasks: tasks, cache: cache, validator: validate, logger: logger}
}

// Create adds a subtask under a task owned by the requesting student.
func (s *SubtaskService) Create(ctx context.Context, principal models.Principal, req models.CreateSubtaskRequest) (*models.Subtask, error) {
	if !principal.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can create subtasks")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subtask payload")
	}

	task, err := s.tasks.FindContext(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	if !principal.OwnsStudent(task.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only add subtasks to their own tasks")
	}

	subtask := &models.Subtask{
		TaskID: req.TaskID,
		Name:   req.Name,
		Status: models.StepLocked,
	}
	if err := s.repo.Create(ctx, subtask); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subtask")
	}

	s.invalidateProgress(ctx, task.StudentID)
	return subtask, nil
}

// ListByTask returns the subtasks of a task in creation order, visible to
// the owning student or same-department faculty.
func (s *SubtaskService) ListByTask(ctx context.Context, principal models.Principal, taskID int64) ([]models.Subtask, error) {
	task, err := s.tasks.FindContext(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	if principal.IsStudent() && !principal.OwnsStudent(task.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "access denied")
	}
	if principal.IsFaculty() && !principal.InDepartment(task.Department) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "access denied for this department")
	}

	subtasks, err := s.repo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subtasks")
	}
	return subtasks, nil
}

// Update edits name or status, permitted for the owning student or
// same-department faculty.
func (s *SubtaskService) Update(ctx context.Context, principal models.Principal, id int64, req models.UpdateSubtaskRequest) (*models.Subtask, error) {
	sc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutation(principal, sc); err != nil {
		return nil, err
	}

	if req.Status != nil {
		status := models.StepStatus(*req.Status)
		if !status.Writable() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid subtask status %q", *req.Status))
		}
		sc.Status = status
	}
	if req.Name != nil {
		sc.Name = *req.Name
	}

	if err := s.repo.Update(ctx, &sc.Subtask); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subtask")
	}

	s.invalidateProgress(ctx, sc.StudentID)
	return &sc.Subtask, nil
}

// Delete removes a subtask.
func (s *SubtaskService) Delete(ctx context.Context, principal models.Principal, id int64) error {
	sc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeMutation(principal, sc); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subtask")
	}

	s.invalidateProgress(ctx, sc.StudentID)
	return nil
}

func (s *SubtaskService) authorizeMutation(principal models.Principal, sc *models.SubtaskContext) error {
	if principal.OwnsStudent(sc.StudentID) || principal.InDepartment(sc.Department) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "access denied")
}

func (s *SubtaskService) find(ctx context.Context, id int64) (*models.SubtaskContext, error) {
	sc, err := s.repo.FindContext(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subtask not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subtask")
	}
	return sc, nil
}

func (s *SubtaskService) invalidateProgress(ctx context.Context, studentID string) {
	if err := s.cache.Invalidate(ctx, "progress:"+studentID+":*"); err != nil {
		s.logger.Warn("progress cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
