package models

import "time"

// Timeline event labels. Every transition attempt, applied or blocked,
// appends exactly one event carrying one of these labels.
const (
	TimelineSubmitted       = "Submitted"
	TimelinePaymentVerified = "Payment Verified"
	TimelineDraftSaved      = "Draft Saved"
	TimelineRevaluated      = "Revaluated"
	TimelineResultApproved  = "Result Approved"
	TimelinePublished       = "Published"
	TimelineRejected        = "Rejected"
	TimelineClosed          = "Closed"
	TimelineBlocked         = "Transition Blocked"
)

// TimelineEvent is one immutable audit entry for an application. Events are
// never updated or deleted; reads order by (created_at, seq) where seq is a
// monotonic insertion counter assigned by the database.
type TimelineEvent struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"applicationId"`
	Label         string    `db:"label" json:"label"`
	Note          string    `db:"note" json:"note"`
	ActorRole     UserRole  `db:"actor_role" json:"actorRole"`
	Seq           int64     `db:"seq" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
