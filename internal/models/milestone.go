package models

import "time"

// MilestoneStatus enumerates the milestone lifecycle states.
type MilestoneStatus string

const (
	MilestoneLocked          MilestoneStatus = "Locked"
	MilestoneOpen            MilestoneStatus = "Open"
	MilestoneInProgress      MilestoneStatus = "In Progress"
	MilestonePendingApproval MilestoneStatus = "Pending Approval"
	MilestoneCompleted       MilestoneStatus = "Completed"
)

// MilestoneStatuses is the full enumeration in lifecycle order.
var MilestoneStatuses = []MilestoneStatus{
	MilestoneLocked,
	MilestoneOpen,
	MilestoneInProgress,
	MilestonePendingApproval,
	MilestoneCompleted,
}

// Valid reports whether the value is a member of the milestone enumeration.
func (s MilestoneStatus) Valid() bool {
	for _, known := range MilestoneStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// FacultyOnly reports whether the status may only be set by faculty.
// Open is granted by faculty and Completed requires the approval flow.
func (s MilestoneStatus) FacultyOnly() bool {
	return s == MilestoneOpen || s == MilestoneCompleted
}

// Milestone is the top-level unit of a student's research program. The
// department is copied from the creating faculty member and scopes every
// later faculty operation on the milestone and its descendants.
type Milestone struct {
	MilestoneID         int64           `db:"milestone_id" json:"milestone_id"`
	StudentID           string          `db:"student_id" json:"student_id"`
	Name                string          `db:"name" json:"name"`
	Department          string          `db:"department" json:"department"`
	Status              MilestoneStatus `db:"status" json:"status"`
	IsFrozen            bool            `db:"is_frozen" json:"is_frozen"`
	FrozenByFacultyID   *string         `db:"frozen_by_faculty_id" json:"frozen_by_faculty_id,omitempty"`
	FrozenAt            *time.Time      `db:"frozen_at" json:"frozen_at,omitempty"`
	ApprovedByFacultyID *string         `db:"approved_by_faculty_id" json:"approved_by_faculty_id,omitempty"`
	ApprovedAt          *time.Time      `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// CreateMilestoneRequest holds the payload for creating milestones. The
// department is never taken from the payload; it comes from the requester.
type CreateMilestoneRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
}

// UpdateStatusRequest carries a requested status value for any level.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// FreezeRequest toggles the freeze hold on a milestone or stage.
type FreezeRequest struct {
	Freeze *bool `json:"freeze" validate:"required"`
}
