package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/research-nest/researchnest-api/internal/models"
)

// SubtaskRepository manages persistence for subtasks.
type SubtaskRepository struct {
	db *sqlx.DB
}

// NewSubtaskRepository constructs a SubtaskRepository.
func NewSubtaskRepository(db *sqlx.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

// Create inserts a subtask and fills in the generated id.
func (r *SubtaskRepository) Create(ctx context.Context, s *models.Subtask) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	const query = `INSERT INTO subtasks (task_id, name, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING subtask_id`
	if err := r.db.QueryRowContext(ctx, query, s.TaskID, s.Name, s.Status, s.CreatedAt, s.UpdatedAt).Scan(&s.SubtaskID); err != nil {
		return fmt.Errorf("create subtask: %w", err)
	}
	return nil
}

// FindContext fetches a subtask with its owner and department resolved by
// walking subtask -> task -> stage -> milestone.
func (r *SubtaskRepository) FindContext(ctx context.Context, id int64) (*models.SubtaskContext, error) {
	const query = `SELECT sb.subtask_id, sb.task_id, sb.name, sb.status, sb.created_at, sb.updated_at,
        m.student_id, m.department
        FROM subtasks sb
        JOIN tasks t ON t.task_id = sb.task_id
        JOIN stages st ON st.stage_id = t.stage_id
        JOIN milestones m ON m.milestone_id = st.milestone_id
        WHERE sb.subtask_id = $1`
	var sc models.SubtaskContext
	if err := r.db.GetContext(ctx, &sc, query, id); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ListByTask returns the task's subtasks in creation order.
func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID int64) ([]models.Subtask, error) {
	const query = `SELECT subtask_id, task_id, name, status, created_at, updated_at
        FROM subtasks WHERE task_id = $1 ORDER BY created_at ASC`
	subtasks := []models.Subtask{}
	if err := r.db.SelectContext(ctx, &subtasks, query, taskID); err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	return subtasks, nil
}

// Update rewrites the mutable subtask fields.
func (r *SubtaskRepository) Update(ctx context.Context, s *models.Subtask) error {
	s.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subtasks SET name = :name, status = :status, updated_at = :updated_at
        WHERE subtask_id = :subtask_id`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("update subtask: %w", err)
	}
	return nil
}

// Delete removes the subtask.
func (r *SubtaskRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subtasks WHERE subtask_id = $1`, id); err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}
	return nil
}
