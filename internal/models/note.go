package models

import "time"

// FacultyNote is a free-text annotation authored by faculty. The id
// pointers are opaque tags for retrieval; any subset may be set and a note
// may outlive the entity it references.
type FacultyNote struct {
	NoteID      int64     `db:"note_id" json:"note_id"`
	FacultyID   string    `db:"faculty_id" json:"faculty_id"`
	StudentID   *string   `db:"student_id" json:"student_id,omitempty"`
	MilestoneID *int64    `db:"milestone_id" json:"milestone_id,omitempty"`
	StageID     *int64    `db:"stage_id" json:"stage_id,omitempty"`
	TaskID      *int64    `db:"task_id" json:"task_id,omitempty"`
	SubtaskID   *int64    `db:"subtask_id" json:"subtask_id,omitempty"`
	Note        string    `db:"note" json:"note"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreateNoteRequest holds the payload for creating faculty notes.
type CreateNoteRequest struct {
	StudentID   *string `json:"student_id"`
	MilestoneID *int64  `json:"milestone_id"`
	StageID     *int64  `json:"stage_id"`
	TaskID      *int64  `json:"task_id"`
	SubtaskID   *int64  `json:"subtask_id"`
	Note        string  `json:"note" validate:"required"`
}
