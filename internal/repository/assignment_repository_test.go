package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uems-api/internal/models"
)

func TestAssignmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := &models.Assignment{
		ApplicationID: "app-1",
		ExaminerID:    "examiner-1",
		DueAt:         time.Now().Add(14 * 24 * time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.False(t, assignment.AssignedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListByExaminer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "application_id", "examiner_id", "assigned_at", "due_at"}).
		AddRow("as-2", "app-2", "examiner-1", now, now.AddDate(0, 0, 14)).
		AddRow("as-1", "app-1", "examiner-1", now.Add(-time.Hour), now.AddDate(0, 0, 13))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, application_id, examiner_id, assigned_at, due_at")).
		WithArgs("examiner-1").
		WillReturnRows(rows)

	assignments, err := repo.List(context.Background(), models.AssignmentFilter{ExaminerID: "examiner-1"})
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "as-2", assignments[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
