package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/research-nest/researchnest-api/internal/models"
)

const milestoneColumns = `milestone_id, student_id, name, department, status, is_frozen,
        frozen_by_faculty_id, frozen_at, approved_by_faculty_id, approved_at, created_at, updated_at`

// MilestoneRepository manages persistence for milestones.
type MilestoneRepository struct {
	db *sqlx.DB
}

// NewMilestoneRepository constructs a MilestoneRepository.
func NewMilestoneRepository(db *sqlx.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// Create inserts a milestone and fills in the generated id.
func (r *MilestoneRepository) Create(ctx context.Context, m *models.Milestone) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	const query = `INSERT INTO milestones (student_id, name, department, status, is_frozen, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING milestone_id`
	if err := r.db.QueryRowContext(ctx, query, m.StudentID, m.Name, m.Department, m.Status, m.IsFrozen, m.CreatedAt, m.UpdatedAt).Scan(&m.MilestoneID); err != nil {
		return fmt.Errorf("create milestone: %w", err)
	}
	return nil
}

// FindByID fetches a milestone by primary key.
func (r *MilestoneRepository) FindByID(ctx context.Context, id int64) (*models.Milestone, error) {
	query := fmt.Sprintf("SELECT %s FROM milestones WHERE milestone_id = $1", milestoneColumns)
	var m models.Milestone
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByStudent returns a student's milestones in creation order.
func (r *MilestoneRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Milestone, error) {
	query := fmt.Sprintf("SELECT %s FROM milestones WHERE student_id = $1 ORDER BY milestone_id ASC", milestoneColumns)
	milestones := []models.Milestone{}
	if err := r.db.SelectContext(ctx, &milestones, query, studentID); err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return milestones, nil
}

// ListByDepartment returns every milestone scoped to the department.
func (r *MilestoneRepository) ListByDepartment(ctx context.Context, department string) ([]models.Milestone, error) {
	query := fmt.Sprintf("SELECT %s FROM milestones WHERE department = $1 ORDER BY milestone_id ASC", milestoneColumns)
	milestones := []models.Milestone{}
	if err := r.db.SelectContext(ctx, &milestones, query, department); err != nil {
		return nil, fmt.Errorf("list department milestones: %w", err)
	}
	return milestones, nil
}

// DistinctStudentsByDepartment returns each student with at least one
// milestone in the department exactly once.
func (r *MilestoneRepository) DistinctStudentsByDepartment(ctx context.Context, department string) ([]models.Student, error) {
	const query = `SELECT DISTINCT s.student_id, s.name, s.email, s.program, s.password_hash, s.created_at, s.updated_at
        FROM students s
        JOIN milestones m ON m.student_id = s.student_id
        WHERE m.department = $1
        ORDER BY s.student_id ASC`
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, department); err != nil {
		return nil, fmt.Errorf("list department students: %w", err)
	}
	return students, nil
}

// UpdateStatus replaces the milestone status.
func (r *MilestoneRepository) UpdateStatus(ctx context.Context, id int64, status models.MilestoneStatus) error {
	const query = `UPDATE milestones SET status = $2, updated_at = $3 WHERE milestone_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update milestone status: %w", err)
	}
	return nil
}

// SetFreeze stamps or clears the freeze metadata. Both stamp fields are
// written together so they stay both-null or both-set.
func (r *MilestoneRepository) SetFreeze(ctx context.Context, id int64, facultyID *string, at *time.Time) error {
	frozen := facultyID != nil
	const query = `UPDATE milestones SET is_frozen = $2, frozen_by_faculty_id = $3, frozen_at = $4, updated_at = $5
        WHERE milestone_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, frozen, facultyID, at, time.Now().UTC()); err != nil {
		return fmt.Errorf("freeze milestone: %w", err)
	}
	return nil
}

// Approve marks the milestone completed and stamps the approval pair.
func (r *MilestoneRepository) Approve(ctx context.Context, id int64, facultyID string, at time.Time) error {
	const query = `UPDATE milestones SET status = $2, approved_by_faculty_id = $3, approved_at = $4, updated_at = $4
        WHERE milestone_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.MilestoneCompleted, facultyID, at); err != nil {
		return fmt.Errorf("approve milestone: %w", err)
	}
	return nil
}

// Delete removes the milestone and all descendant rows in one transaction.
func (r *MilestoneRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete milestone: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	steps := []string{
		`DELETE FROM subtasks WHERE task_id IN (
            SELECT t.task_id FROM tasks t JOIN stages st ON st.stage_id = t.stage_id WHERE st.milestone_id = $1)`,
		`DELETE FROM tasks WHERE stage_id IN (SELECT stage_id FROM stages WHERE milestone_id = $1)`,
		`DELETE FROM stages WHERE milestone_id = $1`,
		`DELETE FROM milestones WHERE milestone_id = $1`,
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step, id); err != nil {
			return fmt.Errorf("cascade delete milestone: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete milestone: %w", err)
	}
	return nil
}
