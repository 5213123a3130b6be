package models

import "time"

// ApplicationStatus enumerates the revaluation lifecycle states.
type ApplicationStatus string

const (
	StatusSubmitted        ApplicationStatus = "SUBMITTED"
	StatusPaymentVerified  ApplicationStatus = "PAYMENT_VERIFIED"
	StatusUnderReview      ApplicationStatus = "UNDER_REVIEW"
	StatusAwaitingExaminer ApplicationStatus = "AWAITING_EXAMINER"
	StatusRevaluated       ApplicationStatus = "REVALUATED"
	// StatusSecondCheck is reserved for a QA pass between mark entry and
	// approval. No operation currently targets it.
	StatusSecondCheck    ApplicationStatus = "SECOND_CHECK"
	StatusResultApproved ApplicationStatus = "RESULT_APPROVED"
	StatusPublished      ApplicationStatus = "PUBLISHED"
	StatusClosed         ApplicationStatus = "CLOSED"
	StatusRejected       ApplicationStatus = "REJECTED"
)

// Valid reports whether the value is one of the known lifecycle states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusPaymentVerified, StatusUnderReview, StatusAwaitingExaminer,
		StatusRevaluated, StatusSecondCheck, StatusResultApproved, StatusPublished,
		StatusClosed, StatusRejected:
		return true
	}
	return false
}

// PaymentStatus tracks whether the revaluation fee has been verified.
// It never reverts from Paid to Unpaid.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// Application is one student's request to have one or more exam subjects
// re-marked. Items are created together with the application and the set of
// item subject ids always equals SubjectIDs.
type Application struct {
	ID              string            `db:"id" json:"id"`
	StudentID       string            `db:"student_id" json:"studentId"`
	ExamID          string            `db:"exam_id" json:"examId"`
	SubjectIDs      []string          `db:"-" json:"subjectIds"`
	Items           []ApplicationItem `db:"-" json:"items"`
	Status          ApplicationStatus `db:"status" json:"status"`
	FeeAmount       int               `db:"fee_amount" json:"feeAmount"`
	PaymentStatus   PaymentStatus     `db:"payment_status" json:"paymentStatus"`
	PaymentRef      string            `db:"payment_ref" json:"paymentRef"`
	ReasonText      string            `db:"reason_text" json:"reasonText"`
	RejectionReason string            `db:"rejection_reason" json:"rejectionReason"`
	SubmittedAt     time.Time         `db:"submitted_at" json:"submittedAt"`
	PublishedAt     *time.Time        `db:"published_at" json:"publishedAt,omitempty"`
}

// ApplicationItem holds the before/after marks for a single subject.
type ApplicationItem struct {
	ApplicationID string `db:"application_id" json:"-"`
	SubjectID     string `db:"subject_id" json:"subjectId"`
	OldMarks      int    `db:"old_marks" json:"oldMarks"`
	NewMarks      *int   `db:"new_marks" json:"newMarks"`
	Remarks       string `db:"remarks" json:"remarks"`
}

// Item returns the item for the given subject, or nil.
func (a *Application) Item(subjectID string) *ApplicationItem {
	for i := range a.Items {
		if a.Items[i].SubjectID == subjectID {
			return &a.Items[i]
		}
	}
	return nil
}

// ApplicationFilter constrains application listing.
type ApplicationFilter struct {
	IDs       []string
	StudentID string
	ExamID    string
	Status    ApplicationStatus
	Limit     int
	Offset    int
}
