package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uems-api/internal/models"
)

func TestGuardedStatuses(t *testing.T) {
	guarded := []models.ApplicationStatus{
		models.StatusUnderReview,
		models.StatusAwaitingExaminer,
		models.StatusRevaluated,
		models.StatusSecondCheck,
		models.StatusResultApproved,
		models.StatusPublished,
		models.StatusClosed,
	}
	for _, s := range guarded {
		assert.True(t, Guarded(s), "expected %s to be payment-guarded", s)
	}

	open := []models.ApplicationStatus{
		models.StatusSubmitted,
		models.StatusPaymentVerified,
		models.StatusRejected,
	}
	for _, s := range open {
		assert.False(t, Guarded(s), "expected %s to be open", s)
	}
}

func TestPaymentGateBlocksUnpaid(t *testing.T) {
	for _, op := range []Operation{OpFinalizeMarks, OpApprove, OpPublish} {
		decision := Decide(op, models.StatusSubmitted, models.PaymentUnpaid)
		require.False(t, decision.Allowed, "operation %s must be blocked while unpaid", op)
		assert.Equal(t, ReasonPaymentNotVerified, decision.Reason)
	}
}

func TestApproveRequiresRevaluated(t *testing.T) {
	decision := Decide(OpApprove, models.StatusPaymentVerified, models.PaymentPaid)
	require.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "cannot move to")

	decision = Decide(OpApprove, models.StatusRevaluated, models.PaymentPaid)
	require.True(t, decision.Allowed)
	assert.Equal(t, models.StatusResultApproved, decision.Next)
}

func TestPublishAcceptsApprovedOrRevaluated(t *testing.T) {
	for _, current := range []models.ApplicationStatus{models.StatusResultApproved, models.StatusRevaluated} {
		decision := Decide(OpPublish, current, models.PaymentPaid)
		require.True(t, decision.Allowed, "publish from %s should be allowed", current)
		assert.Equal(t, models.StatusPublished, decision.Next)
	}

	decision := Decide(OpPublish, models.StatusPublished, models.PaymentPaid)
	require.False(t, decision.Allowed, "publishing twice must be blocked")
}

func TestFinalizeIdempotentFromRevaluated(t *testing.T) {
	decision := Decide(OpFinalizeMarks, models.StatusRevaluated, models.PaymentPaid)
	require.True(t, decision.Allowed)
	assert.Equal(t, models.StatusRevaluated, decision.Next)
}

func TestRejectFromAnyNonTerminalState(t *testing.T) {
	nonTerminal := []models.ApplicationStatus{
		models.StatusSubmitted,
		models.StatusPaymentVerified,
		models.StatusUnderReview,
		models.StatusAwaitingExaminer,
		models.StatusRevaluated,
		models.StatusSecondCheck,
		models.StatusResultApproved,
	}
	for _, current := range nonTerminal {
		decision := Decide(OpReject, current, models.PaymentUnpaid)
		require.True(t, decision.Allowed, "reject from %s should be allowed", current)
		assert.Equal(t, models.StatusRejected, decision.Next)
	}

	for _, current := range []models.ApplicationStatus{models.StatusPublished, models.StatusClosed, models.StatusRejected} {
		decision := Decide(OpReject, current, models.PaymentPaid)
		require.False(t, decision.Allowed, "reject from terminal %s must be blocked", current)
	}
}

func TestDecidePatch(t *testing.T) {
	decision := DecidePatch(models.StatusUnderReview, models.StatusPaymentVerified, models.PaymentUnpaid)
	require.False(t, decision.Allowed)
	assert.Equal(t, ReasonPaymentNotVerified, decision.Reason)

	decision = DecidePatch(models.StatusUnderReview, models.StatusPaymentVerified, models.PaymentPaid)
	require.True(t, decision.Allowed)

	decision = DecidePatch(models.ApplicationStatus("BOGUS"), models.StatusSubmitted, models.PaymentPaid)
	require.False(t, decision.Allowed)

	// Rejection through the generic patch follows the reject rules.
	decision = DecidePatch(models.StatusRejected, models.StatusSubmitted, models.PaymentUnpaid)
	require.True(t, decision.Allowed)
	decision = DecidePatch(models.StatusRejected, models.StatusPublished, models.PaymentPaid)
	require.False(t, decision.Allowed)
}
