package models

import "time"

// FeeRule maps (program, semester) to the revaluation fee schedule.
// Configuration data, read-only at runtime.
type FeeRule struct {
	ID            string    `db:"id" json:"id"`
	Program       string    `db:"program" json:"program"`
	Semester      int       `db:"semester" json:"semester"`
	PerSubjectFee int       `db:"per_subject_fee" json:"perSubjectFee"`
	LateFee       int       `db:"late_fee" json:"lateFee"`
	LastDate      time.Time `db:"last_date" json:"lastDate"`
}
