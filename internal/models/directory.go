package models

import "time"

// Student is a read-only view of the student roster. The roster is owned by
// the directory system; this service only looks students up by id.
type Student struct {
	ID         string `db:"id" json:"id"`
	RollNumber string `db:"roll_number" json:"rollNumber"`
	FullName   string `db:"full_name" json:"fullName"`
	Program    string `db:"program" json:"program"`
	Semester   int    `db:"semester" json:"semester"`
}

// StudentFilter constrains roster listing.
type StudentFilter struct {
	Program  string
	Semester int
	Search   string
	Limit    int
	Offset   int
}

// Exam is a read-only view of the exam catalogue.
type Exam struct {
	ID       string    `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Program  string    `db:"program" json:"program"`
	Semester int       `db:"semester" json:"semester"`
	HeldAt   time.Time `db:"held_at" json:"heldAt"`
	Subjects []Subject `db:"-" json:"subjects,omitempty"`
}

// Subject is one paper within an exam.
type Subject struct {
	ExamID string `db:"exam_id" json:"-"`
	Code   string `db:"code" json:"code"`
	Title  string `db:"title" json:"title"`
}
