package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uems-api/internal/models"
)

// FileRepository records attachment references. Storage itself is external;
// only the pointer (kind + URL) lives here.
type FileRepository struct {
	db *sqlx.DB
}

// NewFileRepository constructs the repository.
func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create stores a new file reference.
func (r *FileRepository) Create(ctx context.Context, ref *models.FileRef) error {
	if ref.ID == "" {
		ref.ID = uuid.NewString()
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO application_files (id, application_id, kind, url, uploaded_by, created_at)
	VALUES (:id, :application_id, :kind, :url, :uploaded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ref); err != nil {
		return fmt.Errorf("create file reference: %w", err)
	}
	return nil
}

// ListByApplication returns every file reference for one application.
func (r *FileRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.FileRef, error) {
	const query = `SELECT id, application_id, kind, url, uploaded_by, created_at
	FROM application_files WHERE application_id = $1 ORDER BY created_at`
	var refs []models.FileRef
	if err := r.db.SelectContext(ctx, &refs, query, applicationID); err != nil {
		return nil, fmt.Errorf("list file references: %w", err)
	}
	return refs, nil
}
