package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uems-api/internal/dto"
	"github.com/noah-isme/uems-api/internal/models"
	appErrors "github.com/noah-isme/uems-api/pkg/errors"
)

type memAssignments struct {
	created []models.Assignment
}

func (m *memAssignments) Create(_ context.Context, assignment *models.Assignment) error {
	assignment.ID = fmt.Sprintf("as-%d", len(m.created)+1)
	m.created = append(m.created, *assignment)
	return nil
}

func (m *memAssignments) List(_ context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range m.created {
		if filter.ApplicationID != "" && a.ApplicationID != filter.ApplicationID {
			continue
		}
		if filter.ExaminerID != "" && a.ExaminerID != filter.ExaminerID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	return out, nil
}

func TestAssignUsesDefaultSLA(t *testing.T) {
	store := newMemStore()
	assignments := &memAssignments{}
	revals := newTestService(store)
	svc := NewAssignmentService(assignments, store, store, nil, testConfig())

	app, err := revals.Apply(context.Background(), applyRequest(), coeAdmin())
	require.NoError(t, err)

	assignment, err := svc.Assign(context.Background(), dto.CreateAssignmentRequest{
		ApplicationID: app.ID,
		ExaminerID:    "examiner-1",
	}, coeAdmin())
	require.NoError(t, err)
	assert.NotEmpty(t, assignment.ID)

	wantDue := assignment.AssignedAt.AddDate(0, 0, 14)
	assert.WithinDuration(t, wantDue, assignment.DueAt, time.Second)

	events, err := store.ListByApplication(context.Background(), app.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Examiner Assigned", events[1].Label)
}

func TestAssignUnknownApplicationIsNotFound(t *testing.T) {
	store := newMemStore()
	svc := NewAssignmentService(&memAssignments{}, store, store, nil, testConfig())

	_, err := svc.Assign(context.Background(), dto.CreateAssignmentRequest{
		ApplicationID: "missing",
		ExaminerID:    "examiner-1",
	}, coeAdmin())
	require.Error(t, err)
	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}

func TestLatestPicksNewestAssignment(t *testing.T) {
	store := newMemStore()
	assignments := &memAssignments{}
	revals := newTestService(store)
	svc := NewAssignmentService(assignments, store, store, nil, testConfig())
	ctx := context.Background()

	app, err := revals.Apply(ctx, applyRequest(), coeAdmin())
	require.NoError(t, err)

	_, err = svc.Assign(ctx, dto.CreateAssignmentRequest{ApplicationID: app.ID, ExaminerID: "examiner-1", SLADays: 7}, coeAdmin())
	require.NoError(t, err)
	// Force a distinct AssignedAt for deterministic ordering.
	assignments.created[0].AssignedAt = assignments.created[0].AssignedAt.Add(-time.Hour)

	_, err = svc.Assign(ctx, dto.CreateAssignmentRequest{ApplicationID: app.ID, ExaminerID: "examiner-2", SLADays: 7}, coeAdmin())
	require.NoError(t, err)

	latest, err := svc.Latest(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "examiner-2", latest.ExaminerID)

	none, err := svc.Latest(ctx, "app-without-assignments")
	require.NoError(t, err)
	assert.Nil(t, none)
}
