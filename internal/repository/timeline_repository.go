package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uems-api/internal/models"
)

// TimelineRepository persists the append-only per-application audit log.
// There is deliberately no update or delete statement in this file.
type TimelineRepository struct {
	db *sqlx.DB
}

// NewTimelineRepository constructs the repository.
func NewTimelineRepository(db *sqlx.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

const insertTimelineEventQuery = `INSERT INTO timeline_events (id, application_id, label, note, actor_role, created_at)
	VALUES ($1, $2, $3, $4, $5, $6) RETURNING seq`

type timelineExecer interface {
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

func insertTimelineEventTx(ctx context.Context, tx timelineExecer, event *models.TimelineEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	row := tx.QueryRowxContext(ctx, insertTimelineEventQuery,
		event.ID, event.ApplicationID, event.Label, event.Note, event.ActorRole, event.CreatedAt)
	if err := row.Scan(&event.Seq); err != nil {
		return fmt.Errorf("insert timeline event: %w", err)
	}
	return nil
}

// Append stores a new event. The database assigns the insertion sequence
// used to break created_at ties on reads.
func (r *TimelineRepository) Append(ctx context.Context, event *models.TimelineEvent) error {
	return insertTimelineEventTx(ctx, r.db, event)
}

// ListByApplication returns the full chronological history for one
// application.
func (r *TimelineRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.TimelineEvent, error) {
	const query = `SELECT id, application_id, label, note, actor_role, seq, created_at
	FROM timeline_events WHERE application_id = $1 ORDER BY created_at, seq`
	var events []models.TimelineEvent
	if err := r.db.SelectContext(ctx, &events, query, applicationID); err != nil {
		return nil, fmt.Errorf("list timeline events: %w", err)
	}
	return events, nil
}
