package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/research-nest/researchnest-api/internal/models"
)

// ProgressRepository reads the hierarchy transitively owned by a student.
// Ownership is always resolved through milestones.student_id.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository constructs a ProgressRepository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// MilestonesByStudent returns the student's milestones ordered by id.
func (r *ProgressRepository) MilestonesByStudent(ctx context.Context, studentID string) ([]models.Milestone, error) {
	query := fmt.Sprintf("SELECT %s FROM milestones WHERE student_id = $1 ORDER BY milestone_id ASC", milestoneColumns)
	milestones := []models.Milestone{}
	if err := r.db.SelectContext(ctx, &milestones, query, studentID); err != nil {
		return nil, fmt.Errorf("progress milestones: %w", err)
	}
	return milestones, nil
}

// StagesByStudent returns every stage under the student's milestones,
// ordered by id.
func (r *ProgressRepository) StagesByStudent(ctx context.Context, studentID string) ([]models.Stage, error) {
	const query = `SELECT st.stage_id, st.milestone_id, st.name, st.status, st.is_frozen,
        st.frozen_by_faculty_id, st.frozen_at, st.created_at, st.updated_at
        FROM stages st
        JOIN milestones m ON m.milestone_id = st.milestone_id
        WHERE m.student_id = $1
        ORDER BY st.stage_id ASC`
	stages := []models.Stage{}
	if err := r.db.SelectContext(ctx, &stages, query, studentID); err != nil {
		return nil, fmt.Errorf("progress stages: %w", err)
	}
	return stages, nil
}

// TasksByStudent returns every task under the student's hierarchy, ordered
// by id.
func (r *ProgressRepository) TasksByStudent(ctx context.Context, studentID string) ([]models.Task, error) {
	const query = `SELECT t.task_id, t.stage_id, t.name, t.due_date, t.status, t.created_at, t.updated_at
        FROM tasks t
        JOIN stages st ON st.stage_id = t.stage_id
        JOIN milestones m ON m.milestone_id = st.milestone_id
        WHERE m.student_id = $1
        ORDER BY t.task_id ASC`
	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, studentID); err != nil {
		return nil, fmt.Errorf("progress tasks: %w", err)
	}
	return tasks, nil
}

// SubtasksByStudent returns every subtask under the student's hierarchy,
// ordered by id.
func (r *ProgressRepository) SubtasksByStudent(ctx context.Context, studentID string) ([]models.Subtask, error) {
	const query = `SELECT sb.subtask_id, sb.task_id, sb.name, sb.status, sb.created_at, sb.updated_at
        FROM subtasks sb
        JOIN tasks t ON t.task_id = sb.task_id
        JOIN stages st ON st.stage_id = t.stage_id
        JOIN milestones m ON m.milestone_id = st.milestone_id
        WHERE m.student_id = $1
        ORDER BY sb.subtask_id ASC`
	subtasks := []models.Subtask{}
	if err := r.db.SelectContext(ctx, &subtasks, query, studentID); err != nil {
		return nil, fmt.Errorf("progress subtasks: %w", err)
	}
	return subtasks, nil
}

// MilestoneCounts groups the student's milestones by status.
func (r *ProgressRepository) MilestoneCounts(ctx context.Context, studentID string) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM milestones WHERE student_id = $1 GROUP BY status`
	return r.selectCounts(ctx, query, studentID, "milestone")
}

// StageCounts groups the student's stages by status.
func (r *ProgressRepository) StageCounts(ctx context.Context, studentID string) ([]models.StatusCount, error) {
	const query = `SELECT st.status, COUNT(*) AS count
        FROM stages st
        JOIN milestones m ON m.milestone_id = st.milestone_id
        WHERE m.student_id = $1 GROUP BY st.status`
	return r.selectCounts(ctx, query, studentID, "stage")
}

// TaskCounts groups the student's tasks by status.
func (r *ProgressRepository) TaskCounts(ctx context.Context, studentID string) ([]models.StatusCount, error) {
	const query = `SELECT t.status, COUNT(*) AS count
        FROM tasks t
        JOIN stages st ON st.stage_id = t.stage_id
        JOIN milestones m ON m.milestone_id = st.milestone_id
        WHERE m.student_id = $1 GROUP BY t.status`
	return r.selectCounts(ctx, query, studentID, "task")
}

// SubtaskCounts groups the student's subtasks by status.
func (r *ProgressRepository) SubtaskCounts(ctx context.Context, studentID string) ([]models.StatusCount, error) {
	const query = `SELECT sb.status, COUNT(*) AS count
        FROM subtasks sb
        JOIN tasks t ON t.task_id = sb.task_id
        JOIN stages st ON st.stage_id = t.stage_id
        JOIN milestones m ON m.milestone_id = st.milestone_id
        WHERE m.student_id = $1 GROUP BY sb.status`
	return r.selectCounts(ctx, query, studentID, "subtask")
}

func (r *ProgressRepository) selectCounts(ctx context.Context, query, studentID, level string) ([]models.StatusCount, error) {
	counts := []models.StatusCount{}
	if err := r.db.SelectContext(ctx, &counts, query, studentID); err != nil {
		return nil, fmt.Errorf("%s counts: %w", level, err)
	}
	return counts, nil
}
