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

func TestTimelineRepositoryAppend(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimelineRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO timeline_events")).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(3)))

	event := &models.TimelineEvent{
		ApplicationID: "app-1",
		Label:         models.TimelineBlocked,
		Note:          "payment not verified",
		ActorRole:     models.RoleCoEAdmin,
	}
	require.NoError(t, repo.Append(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	assert.EqualValues(t, 3, event.Seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimelineRepositoryListChronological(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimelineRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "application_id", "label", "note", "actor_role", "seq", "created_at"}).
		AddRow("ev-1", "app-1", "Submitted", "", "STUDENT", int64(1), now).
		AddRow("ev-2", "app-1", "Payment Verified", "ref TXN-1", "FINANCE", int64(2), now.Add(time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, application_id, label, note, actor_role, seq, created_at")).
		WithArgs("app-1").
		WillReturnRows(rows)

	events, err := repo.ListByApplication(context.Background(), "app-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Submitted", events[0].Label)
	assert.Equal(t, "Payment Verified", events[1].Label)
	require.NoError(t, mock.ExpectationsWereMet())
}
