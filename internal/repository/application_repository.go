package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uems-api/internal/models"
)

// ApplicationRepository persists revaluation applications and their items.
// All writes after creation go through Mutate, which holds a row lock for the
// duration of the read-modify-write so concurrent operations on the same
// application serialize cleanly.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const selectApplicationColumns = `id, student_id, exam_id, status, fee_amount, payment_status, payment_ref,
       reason_text, rejection_reason, submitted_at, published_at`

const selectItemsQuery = `SELECT application_id, subject_id, old_marks, new_marks, remarks
	FROM application_items WHERE application_id = $1 ORDER BY position`

// Create inserts the application, its items and the creation timeline event
// in a single transaction.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application, event *models.TimelineEvent) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create application: %w", err)
	}

	const insertApp = `INSERT INTO applications
	(id, student_id, exam_id, status, fee_amount, payment_status, payment_ref, reason_text, rejection_reason, submitted_at, published_at)
	VALUES (:id, :student_id, :exam_id, :status, :fee_amount, :payment_status, :payment_ref, :reason_text, :rejection_reason, :submitted_at, :published_at)`
	if _, err := tx.NamedExecContext(ctx, insertApp, app); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert application: %w", err)
	}

	const insertItem = `INSERT INTO application_items (application_id, subject_id, position, old_marks, new_marks, remarks)
	VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range app.Items {
		item := &app.Items[i]
		item.ApplicationID = app.ID
		if _, err := tx.ExecContext(ctx, insertItem, item.ApplicationID, item.SubjectID, i, item.OldMarks, item.NewMarks, item.Remarks); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert application item %s: %w", item.SubjectID, err)
		}
	}

	if event != nil {
		event.ApplicationID = app.ID
		if err := insertTimelineEventTx(ctx, tx, event); err != nil {
			tx.Rollback() //nolint:errcheck
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create application: %w", err)
	}
	return nil
}

// GetByID loads an application with its items.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, selectApplicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &app.Items, selectItemsQuery, id); err != nil {
		return nil, fmt.Errorf("load application items: %w", err)
	}
	fillSubjectIDs(&app)
	return &app, nil
}

// List returns applications matching the filter, newest first. Items are not
// loaded; use GetByID for the full record.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM applications`, selectApplicationColumns))

	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	if len(filter.IDs) > 0 {
		placeholders := make([]string, len(filter.IDs))
		for i, id := range filter.IDs {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.ExamID != "" {
		args = append(args, filter.ExamID)
		conditions = append(conditions, fmt.Sprintf("exam_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY submitted_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		builder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		builder.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Mutate runs fn against the locked application record and persists whatever
// fn changed, plus the timeline event fn returns. fn returning an error
// aborts the transaction; a nil error always commits, so blocked transitions
// (record unchanged, event appended) commit like successful ones.
func (r *ApplicationRepository) Mutate(ctx context.Context, id string, fn func(app *models.Application) (*models.TimelineEvent, error)) (*models.Application, *models.TimelineEvent, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin mutate application: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1 FOR UPDATE`, selectApplicationColumns)
	var app models.Application
	if err := tx.GetContext(ctx, &app, query, id); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, nil, err
	}
	if err := tx.SelectContext(ctx, &app.Items, selectItemsQuery, id); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, nil, fmt.Errorf("load application items: %w", err)
	}
	fillSubjectIDs(&app)

	event, err := fn(&app)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, nil, err
	}

	const updateApp = `UPDATE applications
	SET status = :status, payment_status = :payment_status, payment_ref = :payment_ref,
	    rejection_reason = :rejection_reason, published_at = :published_at
	WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, updateApp, &app); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, nil, fmt.Errorf("update application: %w", err)
	}

	const updateItem = `UPDATE application_items SET new_marks = $3, remarks = $4
	WHERE application_id = $1 AND subject_id = $2`
	for i := range app.Items {
		item := &app.Items[i]
		if _, err := tx.ExecContext(ctx, updateItem, app.ID, item.SubjectID, item.NewMarks, item.Remarks); err != nil {
			tx.Rollback() //nolint:errcheck
			return nil, nil, fmt.Errorf("update application item %s: %w", item.SubjectID, err)
		}
	}

	if event != nil {
		event.ApplicationID = app.ID
		if err := insertTimelineEventTx(ctx, tx, event); err != nil {
			tx.Rollback() //nolint:errcheck
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit mutate application: %w", err)
	}
	return &app, event, nil
}

func fillSubjectIDs(app *models.Application) {
	app.SubjectIDs = make([]string, len(app.Items))
	for i := range app.Items {
		app.SubjectIDs[i] = app.Items[i].SubjectID
	}
}
