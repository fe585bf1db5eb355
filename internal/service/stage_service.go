package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
)

type stageRepository interface {
	Create(ctx context.Context, s *models.Stage) error
	FindContext(ctx context.Context, id int64) (*models.StageContext, error)
	ListByMilestone(ctx context.Context, milestoneID int64) ([]models.Stage, error)
	UpdateStatus(ctx context.Context, id int64, status models.StepStatus) error
	SetFreeze(ctx context.Context, id int64, facultyID *string, at *time.Time) error
	Delete(ctx context.Context, id int64) error
}

type stageMilestoneReader interface {
	FindByID(ctx context.Context, id int64) (*models.Milestone, error)
}

// StageService applies lifecycle and authorization rules for stages.
// Stage status is written only by the owning student; structure changes
// are faculty operations scoped by the parent milestone's department.
type StageService struct {
	repo       stageRepository
	milestones stageMilestoneReader
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStageService constructs the stage service.
func NewStageService(repo stageRepository, milestones stageMilestoneReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StageService{repo: repo, milestones: milestones, cache: cache, validator: validate, logger: logger}
}

// Create adds a stage under a milestone. Faculty only, and only when the
// milestone belongs to the requester's department.
func (s *StageService) Create(ctx context.Context, principal models.Principal, req models.CreateStageRequest) (*models.Stage, error) {
	if !principal.IsFaculty() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty can create stages")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stage payload")
	}

	milestone, err := s.milestones.FindByID(ctx, req.MilestoneID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "milestone not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load milestone")
	}
	if !principal.InDepartment(milestone.Department) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "access denied for this department")
	}

	stage := &models.Stage{
		MilestoneID: req.MilestoneID,
		Name:        req.Name,
		Status:      models.StepLocked,
	}
	if err := s.repo.Create(ctx, stage); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create stage")
	}

	s.invalidateProgress(ctx, milestone.StudentID)
	return stage, nil
}

// ListByMilestone returns the stages of a milestone in creation order,
// visible to the owning student or same-department faculty.
func (s *StageService) ListByMilestone(ctx context.Context, principal models.Principal, milestoneID int64) ([]models.Stage, error) {
	milestone, err := s.milestones.FindByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "milestone not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load milestone")
	}
	if principal.IsStudent() && !principal.OwnsStudent(milestone.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "access denied")
	}
	if principal.IsFaculty() && !principal.InDepartment(milestone.Department) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "access denied for this department")
	}

	stages, err := s.repo.ListByMilestone(ctx, milestoneID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stages")
	}
	return stages, nil
}

// UpdateStatus applies a stage status change requested by the owning
// student. Faculty are rejected here; their hold on a stage is the freeze.
func (s *StageService) UpdateStatus(ctx context.Context, principal models.Principal, id int64, requested string) (*models.Stage, error) {
	if !principal.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can update stage status")
	}

	status := models.StepStatus(requested)
	if !status.Writable() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid stage status %q", requested))
	}

	sc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.OwnsStudent(sc.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only update their own stages")
	}
	if sc.IsFrozen {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "stage is frozen")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update stage status")
	}

	sc.Status = status
	s.invalidateProgress(ctx, sc.StudentID)
	return &sc.Stage, nil
}

// Freeze toggles the faculty hold on a stage, scoped by the parent
// milestone's department.
func (s *StageService) Freeze(ctx context.Context, principal models.Principal, id int64, freeze bool) (*models.Stage, error) {
	if !principal.IsFaculty() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty can freeze or unfreeze stages")
	}

	sc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.InDepartment(sc.Department) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "access denied for this department")
	}

	var facultyID *string
	var at *time.Time
	if freeze {
		now := time.Now().UTC()
		facultyID = &principal.ID
		at = &now
	}
	if err := s.repo.SetFreeze(ctx, id, facultyID, at); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to freeze stage")
	}

	sc.IsFrozen = freeze
	sc.FrozenByFacultyID = facultyID
	sc.FrozenAt = at
	s.invalidateProgress(ctx, sc.StudentID)
	return &sc.Stage, nil
}

// Delete removes a stage and its descendants, scoped by department.
func (s *StageService) Delete(ctx context.Context, principal models.Principal, id int64) error {
	if !principal.IsFaculty() {
		return appErrors.Clone(appErrors.ErrForbidden, "only faculty can delete stages")
	}

	sc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !principal.InDepartment(sc.Department) {
		return appErrors.Clone(appErrors.ErrForbidden, "access denied for this department")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete stage")
	}

	s.invalidateProgress(ctx, sc.StudentID)
	return nil
}

func (s *StageService) find(ctx context.Context, id int64) (*models.StageContext, error) {
	sc, err := s.repo.FindContext(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "stage not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stage")
	}
	return sc, nil
}

func (s *StageService) invalidateProgress(ctx context.Context, studentID string) {
	if err := s.cache.Invalidate(ctx, "progress:"+studentID+":*"); err != nil {
		s.logger.Warn("progress cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
