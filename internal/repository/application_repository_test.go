package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uems-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var appColumns = []string{"id", "student_id", "exam_id", "status", "fee_amount", "payment_status", "payment_ref", "reason_text", "rejection_reason", "submitted_at", "published_at"}

var itemColumns = []string{"application_id", "subject_id", "old_marks", "new_marks", "remarks"}

func TestApplicationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO applications")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO application_items")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO application_items")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO timeline_events")).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(1)))
	mock.ExpectCommit()

	app := &models.Application{
		StudentID:     "STU-1",
		ExamID:        "EX-1",
		Status:        models.StatusSubmitted,
		FeeAmount:     1000,
		PaymentStatus: models.PaymentUnpaid,
		Items: []models.ApplicationItem{
			{SubjectID: "CS601", OldMarks: 42},
			{SubjectID: "CS602", OldMarks: 68},
		},
	}
	event := &models.TimelineEvent{Label: models.TimelineSubmitted, ActorRole: models.RoleStudent}

	require.NoError(t, repo.Create(context.Background(), app, event))
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, app.ID, event.ApplicationID)
	assert.EqualValues(t, 1, event.Seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, exam_id")).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(appColumns).
			AddRow("app-1", "STU-1", "EX-1", "SUBMITTED", 1000, "UNPAID", "", "", "", now, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT application_id, subject_id, old_marks")).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow("app-1", "CS601", 42, nil, "").
			AddRow("app-1", "CS602", 68, nil, ""))

	app, err := repo.GetByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS601", "CS602"}, app.SubjectIDs)
	require.Len(t, app.Items, 2)
	assert.Nil(t, app.Items[0].NewMarks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, exam_id")).
		WithArgs("STU-1", "SUBMITTED").
		WillReturnRows(sqlmock.NewRows(appColumns).
			AddRow("app-1", "STU-1", "EX-1", "SUBMITTED", 1000, "UNPAID", "", "", "", now, nil))

	apps, err := repo.List(context.Background(), models.ApplicationFilter{
		StudentID: "STU-1",
		Status:    models.StatusSubmitted,
	})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "app-1", apps[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryMutate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, student_id, exam_id.*FOR UPDATE").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(appColumns).
			AddRow("app-1", "STU-1", "EX-1", "SUBMITTED", 1000, "UNPAID", "", "", "", now, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT application_id, subject_id, old_marks")).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow("app-1", "CS601", 42, nil, ""))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE application_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO timeline_events")).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(7)))
	mock.ExpectCommit()

	app, event, err := repo.Mutate(context.Background(), "app-1", func(app *models.Application) (*models.TimelineEvent, error) {
		app.Status = models.StatusPaymentVerified
		app.PaymentStatus = models.PaymentPaid
		app.PaymentRef = "TXN-1"
		return &models.TimelineEvent{Label: models.TimelinePaymentVerified, Note: "ref TXN-1", ActorRole: models.RoleFinance}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentVerified, app.Status)
	assert.EqualValues(t, 7, event.Seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryMutateRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, student_id, exam_id.*FOR UPDATE").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(appColumns).
			AddRow("app-1", "STU-1", "EX-1", "SUBMITTED", 1000, "UNPAID", "", "", "", now, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT application_id, subject_id, old_marks")).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(itemColumns))
	mock.ExpectRollback()

	_, _, err := repo.Mutate(context.Background(), "app-1", func(app *models.Application) (*models.TimelineEvent, error) {
		return nil, assert.AnError
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
