package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/research-nest/researchnest-api/internal/models"
)

// StageRepository manages persistence for stages.
type StageRepository struct {
	db *sqlx.DB
}

// NewStageRepository constructs a StageRepository.
func NewStageRepository(db *sqlx.DB) *StageRepository {
	return &StageRepository{db: db}
}

// Create inserts a stage and fills in the generated id.
func (r *StageRepository) Create(ctx context.Context, s *models.Stage) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	const query = `INSERT INTO stages (milestone_id, name, status, is_frozen, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING stage_id`
	if err := r.db.QueryRowContext(ctx, query, s.MilestoneID, s.Name, s.Status, s.IsFrozen, s.CreatedAt, s.UpdatedAt).Scan(&s.StageID); err != nil {
		return fmt.Errorf("create stage: %w", err)
	}
	return nil
}

// FindContext fetches a stage joined with its milestone's owner and
// department for policy evaluation.
func (r *StageRepository) FindContext(ctx context.Context, id int64) (*models.StageContext, error) {
	const query = `SELECT st.stage_id, st.milestone_id, st.name, st.status, st.is_frozen,
        st.frozen_by_faculty_id, st.frozen_at, st.created_at, st.updated_at,
        m.student_id, m.department
        FROM stages st
        JOIN milestones m ON m.milestone_id = st.milestone_id
        WHERE st.stage_id = $1`
	var sc models.StageContext
	if err := r.db.GetContext(ctx, &sc, query, id); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ListByMilestone returns the milestone's stages in creation order.
func (r *StageRepository) ListByMilestone(ctx context.Context, milestoneID int64) ([]models.Stage, error) {
	const query = `SELECT stage_id, milestone_id, name, status, is_frozen, frozen_by_faculty_id, frozen_at, created_at, updated_at
        FROM stages WHERE milestone_id = $1 ORDER BY created_at ASC`
	stages := []models.Stage{}
	if err := r.db.SelectContext(ctx, &stages, query, milestoneID); err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	return stages, nil
}

// UpdateStatus replaces the stage status.
func (r *StageRepository) UpdateStatus(ctx context.Context, id int64, status models.StepStatus) error {
	const query = `UPDATE stages SET status = $2, updated_at = $3 WHERE stage_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update stage status: %w", err)
	}
	return nil
}

// SetFreeze stamps or clears the freeze metadata pair.
func (r *StageRepository) SetFreeze(ctx context.Context, id int64, facultyID *string, at *time.Time) error {
	frozen := facultyID != nil
	const query = `UPDATE stages SET is_frozen = $2, frozen_by_faculty_id = $3, frozen_at = $4, updated_at = $5
        WHERE stage_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, frozen, facultyID, at, time.Now().UTC()); err != nil {
		return fmt.Errorf("freeze stage: %w", err)
	}
	return nil
}

// Delete removes the stage and its descendant tasks and subtasks in one
// transaction.
func (r *StageRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete stage: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	steps := []string{
		`DELETE FROM subtasks WHERE task_id IN (SELECT task_id FROM tasks WHERE stage_id = $1)`,
		`DELETE FROM tasks WHERE stage_id = $1`,
		`DELETE FROM stages WHERE stage_id = $1`,
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step, id); err != nil {
			return fmt.Errorf("cascade delete stage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete stage: %w", err)
	}
	return nil
}
