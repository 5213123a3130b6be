// Package lifecycle implements the transition guard for revaluation
// applications. The guard is the only authority on whether a status change is
// legal; callers apply the change and record the outcome, but never decide
// legality themselves.
//
// Status graph:
//
//	SUBMITTED ──► PAYMENT_VERIFIED ──► UNDER_REVIEW ──► AWAITING_EXAMINER
//	   ──► REVALUATED ──► RESULT_APPROVED ──► PUBLISHED ──► CLOSED
//
// REJECTED is reachable from every non-terminal state. PUBLISHED, CLOSED and
// REJECTED are terminal. Every state past PAYMENT_VERIFIED represents real
// processing work and may only be entered once the fee is verified.
package lifecycle

import (
	"fmt"

	"github.com/noah-isme/uems-api/internal/models"
)

// Operation names the guarded state-changing operations.
type Operation string

const (
	OpVerifyPayment Operation = "verify_payment"
	OpStatusPatch   Operation = "status_patch"
	OpFinalizeMarks Operation = "finalize_marks"
	OpApprove       Operation = "approve"
	OpPublish       Operation = "publish"
	OpReject        Operation = "reject"
)

// Reasons recorded verbatim in blocked timeline events.
const (
	ReasonPaymentNotVerified = "payment not verified"
)

// Decision is the guard's verdict on a transition attempt. A disallowed
// decision is a normal outcome, not an error: the caller leaves the record
// unchanged and logs the reason.
type Decision struct {
	Allowed bool
	Next    models.ApplicationStatus
	Reason  string
}

func allow(next models.ApplicationStatus) Decision {
	return Decision{Allowed: true, Next: next}
}

func block(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// guardedStatuses may only be entered with a verified payment. SUBMITTED,
// PAYMENT_VERIFIED and REJECTED stay open so an application can exist, and be
// rejected, without ever being paid for.
var guardedStatuses = map[models.ApplicationStatus]struct{}{
	models.StatusUnderReview:      {},
	models.StatusAwaitingExaminer: {},
	models.StatusRevaluated:       {},
	models.StatusSecondCheck:      {},
	models.StatusResultApproved:   {},
	models.StatusPublished:        {},
	models.StatusClosed:           {},
}

var terminalStatuses = map[models.ApplicationStatus]struct{}{
	models.StatusPublished: {},
	models.StatusClosed:    {},
	models.StatusRejected:  {},
}

// predecessors lists, per operation, the statuses an application must
// currently be in. Operations absent from the table accept any current
// status.
var predecessors = map[Operation][]models.ApplicationStatus{
	OpApprove: {models.StatusRevaluated},
	// Publish also accepts REVALUATED directly: deliberate policy relaxation
	// letting the CoE skip the separate approval step for an application.
	OpPublish: {models.StatusResultApproved, models.StatusRevaluated},
}

// targets maps each fixed-target operation to the status it moves into.
var targets = map[Operation]models.ApplicationStatus{
	OpFinalizeMarks: models.StatusRevaluated,
	OpApprove:       models.StatusResultApproved,
	OpPublish:       models.StatusPublished,
	OpReject:        models.StatusRejected,
}

// Guarded reports whether entering the status requires verified payment.
func Guarded(s models.ApplicationStatus) bool {
	_, ok := guardedStatuses[s]
	return ok
}

// Terminal reports whether the status has no outgoing transitions.
func Terminal(s models.ApplicationStatus) bool {
	_, ok := terminalStatuses[s]
	return ok
}

// Decide evaluates a fixed-target operation against the application's current
// status and payment state.
func Decide(op Operation, current models.ApplicationStatus, payment models.PaymentStatus) Decision {
	target, ok := targets[op]
	if !ok {
		return block(fmt.Sprintf("unknown operation %q", op))
	}

	if op == OpReject {
		// Rejection is not payment-guarded, but terminal states stay final.
		if Terminal(current) {
			return block(fmt.Sprintf("status %s is terminal and cannot be rejected", current))
		}
		return allow(target)
	}

	if Guarded(target) && payment != models.PaymentPaid {
		return block(ReasonPaymentNotVerified)
	}

	if preds, restricted := predecessors[op]; restricted {
		for _, p := range preds {
			if current == p {
				return allow(target)
			}
		}
		return block(fmt.Sprintf("status %s cannot move to %s", current, target))
	}

	return allow(target)
}

// DecidePatch evaluates a generic status patch to an arbitrary target. Used
// by the admin status endpoint; the only rule is the payment guard on the
// target status.
func DecidePatch(target models.ApplicationStatus, current models.ApplicationStatus, payment models.PaymentStatus) Decision {
	if !target.Valid() {
		return block(fmt.Sprintf("unknown status %q", target))
	}
	if target == models.StatusRejected {
		return Decide(OpReject, current, payment)
	}
	if Guarded(target) && payment != models.PaymentPaid {
		return block(ReasonPaymentNotVerified)
	}
	return allow(target)
}
