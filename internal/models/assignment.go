package models

import "time"

// Assignment routes an application to an examiner with a due date. Multiple
// assignments may exist for one application; the full history is kept and
// callers pick the latest by AssignedAt.
type Assignment struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"applicationId"`
	ExaminerID    string    `db:"examiner_id" json:"examinerId"`
	AssignedAt    time.Time `db:"assigned_at" json:"assignedAt"`
	DueAt         time.Time `db:"due_at" json:"dueAt"`
}

// AssignmentFilter constrains assignment listing.
type AssignmentFilter struct {
	ApplicationID string
	ExaminerID    string
}
