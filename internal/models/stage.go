package models

import "time"

// StepStatus enumerates the three states shared by stages, tasks and
// subtasks.
type StepStatus string

const (
	StepLocked     StepStatus = "Locked"
	StepInProgress StepStatus = "In Progress"
	StepCompleted  StepStatus = "Completed"
)

// StepStatuses is the full enumeration for the lower three levels.
var StepStatuses = []StepStatus{StepLocked, StepInProgress, StepCompleted}

// Valid reports whether the value is a member of the enumeration.
func (s StepStatus) Valid() bool {
	return s == StepLocked || s == StepInProgress || s == StepCompleted
}

// Writable reports whether an actor may request the value directly. Locked
// is only ever a default, never a requested transition.
func (s StepStatus) Writable() bool {
	return s == StepInProgress || s == StepCompleted
}

// Stage is a phase within a milestone. Status is settable by the owning
// student only; freeze and delete are faculty operations scoped by the
// parent milestone's department.
type Stage struct {
	StageID           int64      `db:"stage_id" json:"stage_id"`
	MilestoneID       int64      `db:"milestone_id" json:"milestone_id"`
	Name              string     `db:"name" json:"name"`
	Status            StepStatus `db:"status" json:"status"`
	IsFrozen          bool       `db:"is_frozen" json:"is_frozen"`
	FrozenByFacultyID *string    `db:"frozen_by_faculty_id" json:"frozen_by_faculty_id,omitempty"`
	FrozenAt          *time.Time `db:"frozen_at" json:"frozen_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// StageContext is a stage joined with the owner and department of its
// parent milestone, used for policy checks without a second round trip.
type StageContext struct {
	Stage
	StudentID  string `db:"student_id" json:"-"`
	Department string `db:"department" json:"-"`
}

// CreateStageRequest holds the payload for creating stages.
type CreateStageRequest struct {
	MilestoneID int64  `json:"milestone_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
}
