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

type milestoneRepository interface {
	Create(ctx context.Context, m *models.Milestone) error
	FindByID(ctx context.Context, id int64) (*models.Milestone, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Milestone, error)
	UpdateStatus(ctx context.Context, id int64, status models.MilestoneStatus) error
	SetFreeze(ctx context.Context, id int64, facultyID *string, at *time.Time) error
	Approve(ctx context.Context, id int64, facultyID string, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

type studentDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type milestoneStageLister interface {
	ListByMilestone(ctx context.Context, milestoneID int64) ([]models.Stage, error)
}

// MilestoneService applies the lifecycle and authorization rules for the
// top level of the hierarchy.
type MilestoneService struct {
	repo      milestoneRepository
	students  studentDirectory
	stages    milestoneStageLister
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMilestoneService constructs the milestone service.
func NewMilestoneService(repo milestoneRepository, students studentDirectory, stages milestoneStageLister, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MilestoneService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MilestoneService{repo: repo, students: students, stages: stages, cache: cache, validator: validate, logger: logger}
}

// Create assigns a new milestone to a student. Faculty only; the milestone
// department is copied from the requester and never from the payload.
func (s *MilestoneService) Create(ctx context.Context, principal models.Principal, req models.CreateMilestoneRequest) (*models.Milestone, error) {
	if !principal.IsFaculty() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty can create milestones")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid milestone payload")
	}

	exists, err := s.students.Exists(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	milestone := &models.Milestone{
		StudentID:  req.StudentID,
		Name:       req.Name,
		Department: principal.Department,
		Status:     models.MilestoneLocked,
	}
	if err := s.repo.Create(ctx, milestone); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create milestone")
	}

	s.invalidateProgress(ctx, milestone.StudentID)
	return milestone, nil
}

// ListByStudent returns a student's milestones with their stages embedded.
// Students may only list their own; faculty see only milestones in their
// department.
func (s *MilestoneService) ListByStudent(ctx context.Context, principal models.Principal, studentID string) ([]models.MilestoneNode, error) {
	if principal.IsStudent() && !principal.OwnsStudent(studentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only view their own milestones")
	}

	milestones, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list milestones")
	}

	nodes := make([]models.MilestoneNode, 0, len(milestones))
	for _, m := range milestones {
		if principal.IsFaculty() && !principal.InDepartment(m.Department) {
			continue
		}
		stages, err := s.stages.ListByMilestone(ctx, m.MilestoneID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stages")
		}
		node := models.MilestoneNode{Milestone: m, Stages: make([]models.StageNode, 0, len(stages))}
		for _, st := range stages {
			node.Stages = append(node.Stages, models.StageNode{Stage: st, Tasks: []models.TaskNode{}})
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// UpdateStatus validates and applies a milestone status change. Faculty may
// set any value; students may not set Open or Completed, and a frozen
// milestone rejects student writes.
func (s *MilestoneService) UpdateStatus(ctx context.Context, principal models.Principal, id int64, requested string) (*models.Milestone, error) {
	milestone, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	status := models.MilestoneStatus(requested)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid milestone status %q", requested))
	}

	if principal.IsStudent() {
		if !principal.OwnsStudent(milestone.StudentID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only update their own milestones")
		}
		if milestone.IsFrozen {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "milestone is frozen")
		}
		if status == models.MilestoneOpen {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty can set a milestone to Open")
		}
		if status == models.MilestoneCompleted {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "milestone completion requires faculty approval")
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update milestone status")
	}

	milestone.Status = status
	s.invalidateProgress(ctx, milestone.StudentID)
	return milestone, nil
}

// Freeze toggles the faculty hold on a milestone. The actor and timestamp
// are stamped together on freeze and cleared together on unfreeze.
func (s *MilestoneService) Freeze(ctx context.Context, principal models.Principal, id int64, freeze bool) (*models.Milestone, error) {
	if !principal.IsFaculty() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty can freeze or unfreeze milestones")
	}

	milestone, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	var facultyID *string
	var at *time.Time
	if freeze {
		now := time.Now().UTC()
		facultyID = &principal.ID
		at = &now
	}
	if err := s.repo.SetFreeze(ctx, id, facultyID, at); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to freeze milestone")
	}

	milestone.IsFrozen = freeze
	milestone.FrozenByFacultyID = facultyID
	milestone.FrozenAt = at
	s.invalidateProgress(ctx, milestone.StudentID)
	return milestone, nil
}

// Approve completes a milestone that is pending approval, stamping the
// acting faculty member and time. Any other current status is a conflict.
func (s *MilestoneService) Approve(ctx context.Context, principal models.Principal, id int64) (*models.Milestone, error) {
	if !principal.IsFaculty() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty can approve milestones")
	}

	milestone, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if milestone.Status != models.MilestonePendingApproval {
		return nil, appErrors.Clone(appErrors.ErrConflict, "milestone is not pending approval")
	}

	now := time.Now().UTC()
	if err := s.repo.Approve(ctx, id, principal.ID, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve milestone")
	}

	milestone.Status = models.MilestoneCompleted
	milestone.ApprovedByFacultyID = &principal.ID
	milestone.ApprovedAt = &now
	s.invalidateProgress(ctx, milestone.StudentID)
	return milestone, nil
}

// Delete removes a milestone and all of its descendants.
func (s *MilestoneService) Delete(ctx context.Context, principal models.Principal, id int64) error {
	if !principal.IsFaculty() {
		return appErrors.Clone(appErrors.ErrForbidden, "only faculty can delete milestones")
	}

	milestone, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete milestone")
	}

	s.invalidateProgress(ctx, milestone.StudentID)
	return nil
}

func (s *MilestoneService) find(ctx context.Context, id int64) (*models.Milestone, error) {
	milestone, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "milestone not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load milestone")
	}
	return milestone, nil
}

func (s *MilestoneService) invalidateProgress(ctx context.Context, studentID string) {
	if err := s.cache.Invalidate(ctx, "progress:"+studentID+":*"); err != nil {
		s.logger.Warn("progress cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
