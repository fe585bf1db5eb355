package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/research-nest/researchnest-api/internal/models"
)

// NoteRepository manages persistence for faculty notes.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository constructs a NoteRepository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a note and fills in the generated id.
func (r *NoteRepository) Create(ctx context.Context, n *models.FacultyNote) error {
	n.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO faculty_notes (faculty_id, student_id, milestone_id, stage_id, task_id, subtask_id, note, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING note_id`
	if err := r.db.QueryRowContext(ctx, query,
		n.FacultyID, n.StudentID, n.MilestoneID, n.StageID, n.TaskID, n.SubtaskID, n.Note, n.CreatedAt).Scan(&n.NoteID); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// FindByID fetches a note by primary key.
func (r *NoteRepository) FindByID(ctx context.Context, id int64) (*models.FacultyNote, error) {
	const query = `SELECT note_id, faculty_id, student_id, milestone_id, stage_id, task_id, subtask_id, note, created_at
        FROM faculty_notes WHERE note_id = $1`
	var note models.FacultyNote
	if err := r.db.GetContext(ctx, &note, query, id); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListByStudent returns the notes tagged with the student id.
func (r *NoteRepository) ListByStudent(ctx context.Context, studentID string) ([]models.FacultyNote, error) {
	const query = `SELECT note_id, faculty_id, student_id, milestone_id, stage_id, task_id, subtask_id, note, created_at
        FROM faculty_notes WHERE student_id = $1 ORDER BY note_id ASC`
	notes := []models.FacultyNote{}
	if err := r.db.SelectContext(ctx, &notes, query, studentID); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Delete removes the note.
func (r *NoteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM faculty_notes WHERE note_id = $1`, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
