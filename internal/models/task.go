package models

import "time"

// Task is a unit of work within a stage, created by the owning student.
type Task struct {
	TaskID    int64      `db:"task_id" json:"task_id"`
	StageID   int64      `db:"stage_id" json:"stage_id"`
	Name      string     `db:"name" json:"name"`
	DueDate   *time.Time `db:"due_date" json:"due_date,omitempty"`
	Status    StepStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// TaskContext is a task joined with the owner and department resolved by
// walking task -> stage -> milestone.
type TaskContext struct {
	Task
	StudentID  string `db:"student_id" json:"-"`
	Department string `db:"department" json:"-"`
}

// CreateTaskRequest holds the payload for creating tasks.
type CreateTaskRequest struct {
	StageID int64      `json:"stage_id" validate:"required"`
	Name    string     `json:"name" validate:"required"`
	DueDate *time.Time `json:"due_date"`
}

// UpdateTaskRequest carries partial task edits. Nil fields are untouched.
type UpdateTaskRequest struct {
	Name    *string    `json:"name"`
	DueDate *time.Time `json:"due_date"`
	Status  *string    `json:"status"`
}
