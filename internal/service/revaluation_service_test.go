package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uems-api/internal/dto"
	"github.com/noah-isme/uems-api/internal/models"
	"github.com/noah-isme/uems-api/pkg/config"
	appErrors "github.com/noah-isme/uems-api/pkg/errors"
)

type memStore struct {
	mu     sync.Mutex
	apps   map[string]*models.Application
	events []models.TimelineEvent
	nextID int
	seq    int64
}

func newMemStore() *memStore {
	return &memStore{apps: make(map[string]*models.Application)}
}

func (m *memStore) Create(_ context.Context, app *models.Application, event *models.TimelineEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	app.ID = fmt.Sprintf("app-%d", m.nextID)
	m.apps[app.ID] = cloneApp(app)
	m.record(app.ID, event)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneApp(app), nil
}

func (m *memStore) List(_ context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Application
	for _, app := range m.apps {
		if filter.StudentID != "" && app.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, *cloneApp(app))
	}
	return out, nil
}

func (m *memStore) Mutate(_ context.Context, id string, fn func(app *models.Application) (*models.TimelineEvent, error)) (*models.Application, *models.TimelineEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.apps[id]
	if !ok {
		return nil, nil, sql.ErrNoRows
	}
	working := cloneApp(stored)
	event, err := fn(working)
	if err != nil {
		return nil, nil, err
	}
	m.apps[id] = cloneApp(working)
	m.record(id, event)
	return working, event, nil
}

func (m *memStore) Append(_ context.Context, event *models.TimelineEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(event.ApplicationID, event)
	return nil
}

func (m *memStore) ListByApplication(_ context.Context, applicationID string) ([]models.TimelineEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TimelineEvent
	for _, ev := range m.events {
		if ev.ApplicationID == applicationID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memStore) record(applicationID string, event *models.TimelineEvent) {
	m.seq++
	event.ApplicationID = applicationID
	event.Seq = m.seq
	event.ID = fmt.Sprintf("ev-%d", m.seq)
	event.CreatedAt = time.Now()
	m.events = append(m.events, *event)
}

func cloneApp(app *models.Application) *models.Application {
	copied := *app
	copied.Items = append([]models.ApplicationItem(nil), app.Items...)
	copied.SubjectIDs = append([]string(nil), app.SubjectIDs...)
	return &copied
}

type memFeeRules struct {
	rules map[string]*models.FeeRule
}

func (m *memFeeRules) Lookup(_ context.Context, program string, semester int) (*models.FeeRule, error) {
	if m.rules == nil {
		return nil, nil
	}
	return m.rules[fmt.Sprintf("%s/%d", program, semester)], nil
}

func (m *memFeeRules) List(_ context.Context) ([]models.FeeRule, error) {
	var out []models.FeeRule
	for _, r := range m.rules {
		out = append(out, *r)
	}
	return out, nil
}

type memRoster struct {
	students map[string]*models.Student
}

func (m *memRoster) GetStudent(_ context.Context, id string) (*models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

type recordedTransition struct {
	operation string
	applied   bool
}

type memObserver struct {
	transitions []recordedTransition
}

func (m *memObserver) ObserveTransition(operation string, applied bool) {
	m.transitions = append(m.transitions, recordedTransition{operation, applied})
}

type memExportQueuer struct {
	requests []dto.ExportRequest
}

func (m *memExportQueuer) Request(_ context.Context, applicationID string, req dto.ExportRequest, _ *models.JWTClaims) (*models.ExportJob, error) {
	m.requests = append(m.requests, req)
	return &models.ExportJob{ID: "job-1", ApplicationID: applicationID}, nil
}

func testConfig() config.RevaluationConfig {
	return config.RevaluationConfig{
		DefaultSLADays:       14,
		DefaultPerSubjectFee: 500,
		DefaultLateFee:       0,
		FeeRuleCacheTTL:      10 * time.Minute,
		ListCacheTTL:         time.Minute,
	}
}

func newTestService(store *memStore, opts ...RevaluationServiceOption) *RevaluationService {
	return NewRevaluationService(store, store, &memFeeRules{}, nil, testConfig(), opts...)
}

func coeAdmin() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-coe", Role: models.RoleCoEAdmin}
}

func applyRequest() dto.CreateApplicationRequest {
	return dto.CreateApplicationRequest{
		StudentID:  "student-1",
		ExamID:     "exam-1",
		SubjectIDs: []string{"CS601", "CS602"},
		OldMarks:   map[string]int{"CS601": 34, "CS602": 41},
		ReasonText: "totaling concern in section B",
		FeeAmount:  1000,
	}
}

func TestApplyCreatesSubmittedApplicationWithItems(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	app, err := svc.Apply(context.Background(), applyRequest(), coeAdmin())
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.Equal(t, models.PaymentUnpaid, app.PaymentStatus)
	assert.Equal(t, 1000, app.FeeAmount)
	require.Len(t, app.Items, 2)
	assert.Equal(t, "CS601", app.Items[0].SubjectID)
	assert.Equal(t, 34, app.Items[0].OldMarks)
	assert.Nil(t, app.Items[0].NewMarks)

	events, err := svc.Timeline(context.Background(), app.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.TimelineSubmitted, events[0].Label)
}

func TestApplyRejectsEmptyAndDuplicateSubjects(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	req := applyRequest()
	req.SubjectIDs = nil
	_, err := svc.Apply(context.Background(), req, coeAdmin())
	require.Error(t, err)

	req = applyRequest()
	req.SubjectIDs = []string{"CS601", "CS601"}
	_, err = svc.Apply(context.Background(), req, coeAdmin())
	require.Error(t, err)
	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrDuplicateSubject.Code, typed.Code)
}

func TestApplyRequiresOldMarksForEverySubject(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	req := applyRequest()
	delete(req.OldMarks, "CS602")
	_, err := svc.Apply(context.Background(), req, coeAdmin())
	require.Error(t, err)
	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
}

func TestApplyComputesFeeFromRule(t *testing.T) {
	store := newMemStore()
	feeRules := &memFeeRules{rules: map[string]*models.FeeRule{
		"BTECH-CS/6": {Program: "BTECH-CS", Semester: 6, PerSubjectFee: 750, LateFee: 200},
	}}
	roster := &memRoster{students: map[string]*models.Student{
		"student-1": {ID: "student-1", Program: "BTECH-CS", Semester: 6},
	}}
	svc := NewRevaluationService(store, store, feeRules, nil, testConfig(), WithRosterStore(roster))

	req := applyRequest()
	req.FeeAmount = 0
	app, err := svc.Apply(context.Background(), req, coeAdmin())
	require.NoError(t, err)
	assert.Equal(t, 2*750+200, app.FeeAmount)
}

func TestApplyFallsBackToDefaultFee(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	req := applyRequest()
	req.FeeAmount = 0
	app, err := svc.Apply(context.Background(), req, coeAdmin())
	require.NoError(t, err)
	assert.Equal(t, 2*500, app.FeeAmount)
}

func TestPaymentGateBlocksGuardedTransitions(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	app, err := svc.Apply(context.Background(), applyRequest(), coeAdmin())
	require.NoError(t, err)

	res, err := svc.UpdateStatus(context.Background(), app.ID, dto.StatusPatchRequest{Status: "UNDER_REVIEW"}, coeAdmin())
	require.NoError(t, err)
	assert.True(t, res.Outcome.Blocked)
	assert.Equal(t, "payment not verified", res.Outcome.Reason)
	assert.Equal(t, models.StatusSubmitted, res.Application.Status)
	require.NotNil(t, res.Event)
	assert.Equal(t, models.TimelineBlocked, res.Event.Label)

	res, err = svc.Approve(context.Background(), app.ID, coeAdmin())
	require.NoError(t, err)
	assert.True(t, res.Outcome.Blocked)
	assert.Equal(t, models.StatusSubmitted, res.Application.Status)
}

func TestVerifyPaymentAdvancesAndIsIdempotent(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	app, err := svc.Apply(context.Background(), applyRequest(), coeAdmin())
	require.NoError(t, err)

	res, err := svc.VerifyPayment(context.Background(), app.ID, dto.VerifyPaymentRequest{PaymentRef: "TXN-100"}, coeAdmin())
	require.NoError(t, err)
	assert.True(t, res.Outcome.Applied)
	assert.Equal(t, models.StatusPaymentVerified, res.Application.Status)
	assert.Equal(t, models.PaymentPaid, res.Application.PaymentStatus)

	res, err = svc.UpdateStatus(context.Background(), app.ID, dto.StatusPatchRequest{Status: "UNDER_REVIEW"}, coeAdmin())
	require.NoError(t, err)
	require.True(t, res.Outcome.Applied)

	res, err = svc.VerifyPayment(context.Background(), app.ID, dto.VerifyPaymentRequest{PaymentRef: "TXN-101"}, coeAdmin())
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, res.Application.Status)
	assert.Equal(t, models.PaymentPaid, res.Application.PaymentStatus)
	assert.Equal(t, "TXN-101", res.Application.PaymentRef)
}

func TestSaveRevisedMarksDraftKeepsStatus(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	app, err := svc.Apply(context.Background(), applyRequest(), coeAdmin())
	require.NoError(t, err)

	res, err := svc.SaveRevisedMarks(context.Background(), app.ID, dto.SaveMarksRequest{
		Entries: []dto.RevisedMarkEntry{{SubjectID: "CS601", NewMarks: 52, Remarks: "re-totaled"}},
	}, coeAdmin())
	require.NoError(t, err)
	assert.True(t, res.Outcome.Applied)
	assert.Equal(t, models.StatusSubmitted, res.Application.Status)

	item := res.Application.Item("CS601")
	require.NotNil(t, item)
	require.NotNil(t, item.NewMarks)
	assert.Equal(t, 52, *item.NewMarks)
	require.NotNil(t, res.Event)
	assert.Equal(t, models.TimelineDraftSaved, res.Event.Label)
}

func TestFinalizeMarksBlockedWhileUnpaidStillSavesEntries(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	app, err := svc.Apply(context.Background(), applyRequest(), coeAdmin())
	require.NoError(t, err)

	res, err := svc.SaveRevisedMarks(context.Background(), app.ID, dto.SaveMarksRequest{
		Entries:  []dto.RevisedMarkEntry{{SubjectID: "CS602", NewMarks: 47}},
		Finalize: true,
	}, coeAdmin())
	require.NoError(t, err)
	assert.True(t, res.Outcome.Blocked)
	assert.Equal(t, models.StatusSubmitted, res.Application.Status)

	item := res.Application.Item("CS602")
	require.NotNil(t, item)
	require.NotNil(t, item.NewMarks)
	assert.Equal(t, 47, *item.NewMarks)
}

func TestSaveRevisedMarksUnknownSubjectAbortsEverything(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	app, err := svc.Apply(context.Background(), applyRequest(), coeAdmin())
	require.NoError(t, err)

	_, err = svc.SaveRevisedMarks(context.Background(), app.ID, dto.SaveMarksRequest{
		Entries: []dto.RevisedMarkEntry{
			{SubjectID: "CS601", NewMarks: 60},
			{SubjectID: "MA999", NewMarks: 70},
		},
	}, coeAdmin())
	require.Error(t, err)

	reloaded, err := svc.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Item("CS601").NewMarks)

	events, err := svc.Timeline(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestFullLifecycleHappyPath(t *testing.T) {
	store := newMemStore()
	observer := &memObserver{}
	svc := newTestService(store, WithTransitionObserver(observer))
	ctx := context.Background()

	app, err := svc.Apply(ctx, applyRequest(), coeAdmin())
	require.NoError(t, err)

	res, err := svc.Approve(ctx, app.ID, coeAdmin())
	require.NoError(t, err)
	require.True(t, res.Outcome.Blocked)

	res, err = svc.VerifyPayment(ctx, app.ID, dto.VerifyPaymentRequest{PaymentRef: "TXN-7"}, coeAdmin())
	require.NoError(t, err)
	require.True(t, res.Outcome.Applied)

	res, err = svc.SaveRevisedMarks(ctx, app.ID, dto.SaveMarksRequest{
		Entries: []dto.RevisedMarkEntry{
			{SubjectID: "CS601", NewMarks: 52},
			{SubjectID: "CS602", NewMarks: 48},
		},
		Finalize: true,
	}, coeAdmin())
	require.NoError(t, err)
	require.True(t, res.Outcome.Applied)
	assert.Equal(t, models.StatusRevaluated, res.Application.Status)

	res, err = svc.Approve(ctx, app.ID, coeAdmin())
	require.NoError(t, err)
	require.True(t, res.Outcome.Applied)
	assert.Equal(t, models.StatusResultApproved, res.Application.Status)

	res, err = svc.Publish(ctx, app.ID, coeAdmin())
	require.NoError(t, err)
	require.True(t, res.Outcome.Applied)
	assert.Equal(t, models.StatusPublished, res.Application.Status)
	require.NotNil(t, res.Application.PublishedAt)

	res, err = svc.Publish(ctx, app.ID, coeAdmin())
	require.NoError(t, err)
	assert.True(t, res.Outcome.Blocked)
	assert.Equal(t, models.StatusPublished, res.Application.Status)

	events, err := svc.Timeline(ctx, app.ID)
	require.NoError(t, err)
	labels := make([]string, 0, len(events))
	for _, ev := range events {
		labels = append(labels, ev.Label)
	}
	assert.Equal(t, []string{
		models.TimelineSubmitted,
		models.TimelineBlocked,
		models.TimelinePaymentVerified,
		models.TimelineRevaluated,
		models.TimelineResultApproved,
		models.TimelinePublished,
		models.TimelineBlocked,
	}, labels)

	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Seq, events[i-1].Seq)
	}

	require.NotEmpty(t, observer.transitions)
	last := observer.transitions[len(observer.transitions)-1]
	assert.Equal(t, "publish", last.operation)
	assert.False(t, last.applied)
}

func TestPublishQueuesResultSlipExport(t *testing.T) {
	store := newMemStore()
	queuer := &memExportQueuer{}
	svc := newTestService(store, WithExportQueuer(queuer))
	ctx := context.Background()

	app, err := svc.Apply(ctx, applyRequest(), coeAdmin())
	require.NoError(t, err)

	res, err := svc.Publish(ctx, app.ID, coeAdmin())
	require.NoError(t, err)
	require.True(t, res.Outcome.Blocked)
	assert.Empty(t, queuer.requests)

	_, err = svc.VerifyPayment(ctx, app.ID, dto.VerifyPaymentRequest{PaymentRef: "TXN-9"}, coeAdmin())
	require.NoError(t, err)
	_, err = svc.SaveRevisedMarks(ctx, app.ID, dto.SaveMarksRequest{
		Entries:  []dto.RevisedMarkEntry{{SubjectID: "CS601", NewMarks: 55}, {SubjectID: "CS602", NewMarks: 47}},
		Finalize: true,
	}, coeAdmin())
	require.NoError(t, err)

	res, err = svc.Publish(ctx, app.ID, coeAdmin())
	require.NoError(t, err)
	require.True(t, res.Outcome.Applied)
	require.Len(t, queuer.requests, 1)
	assert.Equal(t, string(models.ExportTypeResultSlip), queuer.requests[0].Type)
	assert.Equal(t, string(models.ExportFormatPDF), queuer.requests[0].Format)
}

func TestRejectFromNonTerminalAndBlockedFromTerminal(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	app, err := svc.Apply(ctx, applyRequest(), coeAdmin())
	require.NoError(t, err)

	res, err := svc.Reject(ctx, app.ID, dto.RejectRequest{Reason: "window closed"}, coeAdmin())
	require.NoError(t, err)
	require.True(t, res.Outcome.Applied)
	assert.Equal(t, models.StatusRejected, res.Application.Status)
	assert.Equal(t, "window closed", res.Application.RejectionReason)
	require.NotNil(t, res.Event)
	assert.Equal(t, models.TimelineRejected, res.Event.Label)

	res, err = svc.Reject(ctx, app.ID, dto.RejectRequest{Reason: "again"}, coeAdmin())
	require.NoError(t, err)
	assert.True(t, res.Outcome.Blocked)
	assert.Equal(t, models.StatusRejected, res.Application.Status)
	assert.Equal(t, "window closed", res.Application.RejectionReason)
}

func TestStatusPatchToRejectedUsesRejectRules(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	app, err := svc.Apply(ctx, applyRequest(), coeAdmin())
	require.NoError(t, err)

	res, err := svc.UpdateStatus(ctx, app.ID, dto.StatusPatchRequest{Status: "REJECTED", RejectionReason: "invalid receipt"}, coeAdmin())
	require.NoError(t, err)
	require.True(t, res.Outcome.Applied)
	assert.Equal(t, models.StatusRejected, res.Application.Status)
	assert.Equal(t, "invalid receipt", res.Application.RejectionReason)
}

func TestOperationsOnUnknownApplicationReturnNotFound(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Get(ctx, "missing")
	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)

	_, err = svc.Approve(ctx, "missing", coeAdmin())
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)

	_, err = svc.Timeline(ctx, "missing")
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}

func TestAddTimelineEntryAppendsManualEvent(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	app, err := svc.Apply(ctx, applyRequest(), coeAdmin())
	require.NoError(t, err)

	event, err := svc.AddTimelineEntry(ctx, app.ID, dto.TimelineEntryRequest{Label: "Bulk Import", Note: "migrated from spreadsheet"}, coeAdmin())
	require.NoError(t, err)
	assert.Equal(t, "Bulk Import", event.Label)
	assert.Equal(t, models.RoleCoEAdmin, event.ActorRole)

	events, err := svc.Timeline(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Bulk Import", events[1].Label)
}

func TestListFiltersByStudent(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Apply(ctx, applyRequest(), coeAdmin())
	require.NoError(t, err)
	other := applyRequest()
	other.StudentID = "student-2"
	_, err = svc.Apply(ctx, other, coeAdmin())
	require.NoError(t, err)

	apps, err := svc.List(ctx, dto.ApplicationQuery{StudentID: "student-1"})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "student-1", apps[0].StudentID)
}
