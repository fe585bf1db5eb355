package models

import "time"

// Subtask is the finest-grained checklist item, nested under a task.
type Subtask struct {
	SubtaskID int64      `db:"subtask_id" json:"subtask_id"`
	TaskID    int64      `db:"task_id" json:"task_id"`
	Name      string     `db:"name" json:"name"`
	Status    StepStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// SubtaskContext is a subtask joined with the owner and department resolved
// by walking subtask -> task -> stage -> milestone.
type SubtaskContext struct {
	Subtask
	StudentID  string `db:"student_id" json:"-"`
	Department string `db:"department" json:"-"`
}

// CreateSubtaskRequest holds the payload for creating subtasks.
type CreateSubtaskRequest struct {
	TaskID int64  `json:"task_id" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

// UpdateSubtaskRequest carries partial subtask edits.
type UpdateSubtaskRequest struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}
