package models

// StatusCount is one row of a per-status aggregation.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

// StatusSummary counts entities of one level grouped by status.
type StatusSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// ProgressSummary aggregates counts across all four levels for a student.
type ProgressSummary struct {
	StudentID  string        `json:"studentId"`
	Milestones StatusSummary `json:"milestones"`
	Stages     StatusSummary `json:"stages"`
	Tasks      StatusSummary `json:"tasks"`
	Subtasks   StatusSummary `json:"subtasks"`
}

// TaskNode is a task with its subtasks embedded.
type TaskNode struct {
	Task
	Subtasks []Subtask `json:"subtasks"`
}

// StageNode is a stage with its tasks embedded.
type StageNode struct {
	Stage
	Tasks []TaskNode `json:"tasks"`
}

// MilestoneNode is a milestone with its stages embedded.
type MilestoneNode struct {
	Milestone
	Stages []StageNode `json:"stages"`
}

// StudentProgress is the full nested hierarchy for one student, every
// level ordered by primary key ascending.
type StudentProgress struct {
	StudentID  string          `json:"studentId"`
	Milestones []MilestoneNode `json:"milestones"`
}

// DepartmentProgress groups the full hierarchies of a department's
// students under the querying faculty member.
type DepartmentProgress struct {
	FacultyID  string            `json:"faculty_id"`
	Department string            `json:"department"`
	Students   []StudentProgress `json:"students"`
}
