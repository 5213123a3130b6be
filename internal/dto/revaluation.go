package dto

import "github.com/noah-isme/uems-api/internal/models"

// CreateApplicationRequest is the payload for submitting a revaluation
// application. FeeAmount zero means "compute from the fee rule table".
type CreateApplicationRequest struct {
	StudentID  string         `json:"studentId" validate:"required"`
	ExamID     string         `json:"examId" validate:"required"`
	SubjectIDs []string       `json:"subjectIds" validate:"required,min=1"`
	OldMarks   map[string]int `json:"oldMarksBySubject" validate:"required"`
	ReasonText string         `json:"reasonText"`
	FeeAmount  int            `json:"feeAmount"`
	// PaymentStatus lets the exam office record an application that was paid
	// at the counter before data entry. Anything other than "PAID" is UNPAID.
	PaymentStatus string `json:"paymentStatus"`
	PaymentRef    string `json:"paymentRef"`
}

// VerifyPaymentRequest records a payment verification event.
type VerifyPaymentRequest struct {
	PaymentRef string `json:"paymentRef" validate:"required"`
}

// StatusPatchRequest moves an application to an arbitrary status. Used by
// the CoE admin console, including for rejection.
type StatusPatchRequest struct {
	Status          string `json:"status" validate:"required"`
	RejectionReason string `json:"rejectionReason"`
	Note            string `json:"note"`
}

// RevisedMarkEntry carries one subject's revised marks.
type RevisedMarkEntry struct {
	SubjectID string `json:"subjectId" validate:"required"`
	NewMarks  int    `json:"newMarks"`
	Remarks   string `json:"remarks"`
}

// SaveMarksRequest updates item marks; Finalize moves the application to
// REVALUATED when the payment guard allows it.
type SaveMarksRequest struct {
	Entries  []RevisedMarkEntry `json:"entries" validate:"required,min=1,dive"`
	Finalize bool               `json:"finalize"`
}

// RejectRequest carries the rejection reason.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// TimelineEntryRequest adds a manual audit entry, e.g. for bulk admin
// actions performed outside the guarded operations.
type TimelineEntryRequest struct {
	Label string `json:"label" validate:"required"`
	Note  string `json:"note"`
}

// FileRequest records an externally stored attachment reference.
type FileRequest struct {
	Kind string `json:"kind" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}

// ApplicationQuery filters application listings.
type ApplicationQuery struct {
	StudentID string
	ExamID    string
	Status    string
}

// TransitionOutcome tells the caller whether the operation was applied or
// recorded as blocked. Blocked is a normal outcome, not an error.
type TransitionOutcome struct {
	Applied bool   `json:"applied"`
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
}

// ApplicationResult is the response shape for every state-changing
// operation: the (possibly unchanged) application, the outcome, and the
// timeline event the attempt produced.
type ApplicationResult struct {
	Application *models.Application   `json:"application"`
	Outcome     TransitionOutcome     `json:"outcome"`
	Event       *models.TimelineEvent `json:"event,omitempty"`
}
