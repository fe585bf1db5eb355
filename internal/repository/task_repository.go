package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/research-nest/researchnest-api/internal/models"
)

// TaskRepository manages persistence for tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs a TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task and fills in the generated id.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	const query = `INSERT INTO tasks (stage_id, name, due_date, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING task_id`
	if err := r.db.QueryRowContext(ctx, query, t.StageID, t.Name, t.DueDate, t.Status, t.CreatedAt, t.UpdatedAt).Scan(&t.TaskID); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindContext fetches a task with its owner and department resolved by
// walking task -> stage -> milestone.
func (r *TaskRepository) FindContext(ctx context.Context, id int64) (*models.TaskContext, error) {
	const query = `SELECT t.task_id, t.stage_id, t.name, t.due_date, t.status, t.created_at, t.updated_at,
        m.student_id, m.department
        FROM tasks t
        JOIN stages st ON st.stage_id = t.stage_id
        JOIN milestones m ON m.milestone_id = st.milestone_id
        WHERE t.task_id = $1`
	var tc models.TaskContext
	if err := r.db.GetContext(ctx, &tc, query, id); err != nil {
		return nil, err
	}
	return &tc, nil
}

// ListByStage returns the stage's tasks in creation order.
func (r *TaskRepository) ListByStage(ctx context.Context, stageID int64) ([]models.Task, error) {
	const query = `SELECT task_id, stage_id, name, due_date, status, created_at, updated_at
        FROM tasks WHERE stage_id = $1 ORDER BY created_at ASC`
	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, stageID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update rewrites the mutable task fields.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	t.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks SET name = :name, due_date = :due_date, status = :status, updated_at = :updated_at
        WHERE task_id = :task_id`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Delete removes the task and its subtasks in one transaction.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete task: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE task_id = $1`, id); err != nil {
		return fmt.Errorf("cascade delete task: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE task_id = $1`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete task: %w", err)
	}
	return nil
}
