package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
)

type noteRepository interface {
	Create(ctx context.Context, n *models.FacultyNote) error
	FindByID(ctx context.Context, id int64) (*models.FacultyNote, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.FacultyNote, error)
	Delete(ctx context.Context, id int64) error
}

// NoteService manages faculty annotations. Notes are created by faculty
// and deleted only by their author; the referenced ids are opaque tags.
type NoteService struct {
	repo      noteRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoteService constructs the note service.
func NewNoteService(repo noteRepository, validate *validator.Validate, logger *zap.Logger) *NoteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{repo: repo, validator: validate, logger: logger}
}

// Create records a note authored by the requesting faculty member.
func (s *NoteService) Create(ctx context.Context, principal models.Principal, req models.CreateNoteRequest) (*models.FacultyNote, error) {
	if !principal.IsFaculty() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty can add notes")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "note text is required")
	}

	note := &models.FacultyNote{
		FacultyID:   principal.ID,
		StudentID:   req.StudentID,
		MilestoneID: req.MilestoneID,
		StageID:     req.StageID,
		TaskID:      req.TaskID,
		SubtaskID:   req.SubtaskID,
		Note:        req.Note,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
	}
	return note, nil
}

// ListByStudent returns the notes tagged with the student id. Students may
// read notes about themselves; faculty may read any.
func (s *NoteService) ListByStudent(ctx context.Context, principal models.Principal, studentID string) ([]models.FacultyNote, error) {
	if principal.IsStudent() && !principal.OwnsStudent(studentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only view their own notes")
	}
	notes, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	return notes, nil
}

// Delete removes a note; only its author may do so.
func (s *NoteService) Delete(ctx context.Context, principal models.Principal, id int64) error {
	if !principal.IsFaculty() {
		return appErrors.Clone(appErrors.ErrForbidden, "only faculty can delete notes")
	}

	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load note")
	}
	if note.FacultyID != principal.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "notes can only be deleted by their author")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
	}
	return nil
}
